package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, req AuthRegisterRequest) error
	ValidateLogin(ctx context.Context, login string, password string) error
	ValidateChangePassword(ctx context.Context, current string, next string) error
	ValidateForceLogout(ctx context.Context, targetUserID int64) error
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(user model.User, now time.Time) (token string, expiresAt time.Time, err error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type UserDTO struct {
	ID          int64      `json:"id"`
	UserName    string     `json:"user_name"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Roles       []string   `json:"roles"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"registration_date"`
	LastLoginAt *time.Time `json:"last_login_date,omitempty"`
}

type AuthRegisterRequest struct {
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

type AuthLoginRequest struct {
	EmailOrUserName string `json:"email_or_user_name"`
	Password        string `json:"password"`
}

type AuthLoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	Email       string   `json:"email"`
	UserName    string   `json:"user_name"`
	Roles       []string `json:"roles"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	audit     repository.AuditLogRepository
	validator AuthValidator
	hasher    PasswordHasher
	verifier  PasswordVerifier
	issuer    AccessTokenIssuer
	clock     Clock
	logger    *slog.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	audit repository.AuditLogRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
	logger *slog.Logger,
) *AuthUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthUsecase{
		users:     users,
		audit:     audit,
		validator: validator,
		hasher:    hasher,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
		logger:    logger,
	}
}

// 会員登録（ロールはCustomer）
func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (UserDTO, error) {
	req.UserName = strings.TrimSpace(req.UserName)
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, req); err != nil {
		return UserDTO{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return UserDTO{}, internalError(err)
	}

	user := &model.User{
		Email:        req.Email,
		UserName:     req.UserName,
		PasswordHash: pwHash,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		Role:         model.RoleCustomer,
		TokenVersion: 0,
		IsActive:     true,
	}

	//同時登録でvalidatorをすり抜けた重複はここで409
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return UserDTO{}, NewConflictError("email or user_name already used")
		}
		return UserDTO{}, storageError(err)
	}

	u.logger.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID))
	return toUserDTO(user), nil
}

// emailでもuser_nameでもログインできる
func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (AuthLoginResponse, error) {
	login := strings.TrimSpace(req.EmailOrUserName)
	if err := u.validator.ValidateLogin(ctx, login, req.Password); err != nil {
		return AuthLoginResponse{}, err
	}

	user, err := u.findByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthLoginResponse{}, NewUnauthorizedError("invalid email/user name or password")
	}
	if err != nil {
		return AuthLoginResponse{}, storageError(err)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return AuthLoginResponse{}, NewUnauthorizedError("account is deactivated")
	}

	if !u.verifier.Verify(req.Password, user.PasswordHash) {
		return AuthLoginResponse{}, NewUnauthorizedError("invalid email/user name or password")
	}

	//last_login更新（失敗してもログインは通す）
	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.logger.WarnContext(ctx, "failed to update last login", slog.Int64("user_id", user.ID), slog.Any("err", err))
	}

	token, expiresAt, err := u.issuer.Issue(*user, now)
	if err != nil {
		return AuthLoginResponse{}, internalError(err)
	}

	return AuthLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(expiresAt.Sub(now).Seconds()),
		Email:       user.Email,
		UserName:    user.UserName,
		Roles:       []string{string(user.Role)},
	}, nil
}

func (u *AuthUsecase) findByLogin(ctx context.Context, login string) (*model.User, error) {
	if strings.Contains(login, "@") {
		user, err := u.users.FindByEmail(ctx, login)
		if !errors.Is(err, repository.ErrNotFound) {
			return user, err
		}
	}
	return u.users.FindByUserName(ctx, login)
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewUnauthorizedError("unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserDTO{}, NewNotFoundError("user not found")
	}
	if err != nil {
		return UserDTO{}, storageError(err)
	}
	if !user.IsActive {
		return UserDTO{}, NewForbiddenError("account is deactivated")
	}
	return toUserDTO(user), nil
}

func (u *AuthUsecase) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) (SuccessResponse, error) {
	if userID <= 0 {
		return SuccessResponse{}, NewUnauthorizedError("unauthorized")
	}
	if err := u.validator.ValidateChangePassword(ctx, req.CurrentPassword, req.NewPassword); err != nil {
		return SuccessResponse{}, err
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return SuccessResponse{}, NewUnauthorizedError("unauthorized")
	}
	if err != nil {
		return SuccessResponse{}, storageError(err)
	}

	if !u.verifier.Verify(req.CurrentPassword, user.PasswordHash) {
		return SuccessResponse{}, NewValidationError("current password is incorrect")
	}

	pwHash, err := u.hasher.Hash(req.NewPassword)
	if err != nil {
		return SuccessResponse{}, internalError(err)
	}
	user.PasswordHash = pwHash
	if err := u.users.Update(ctx, user); err != nil {
		return SuccessResponse{}, storageError(err)
	}

	return SuccessResponse{Message: "password changed"}, nil
}

// token_versionを上げて発行済みトークンを無効にする
func (u *AuthUsecase) ForceLogout(ctx context.Context, actorUserID int64, targetUserID int64) (ForceLogoutResponse, error) {
	if err := u.validator.ValidateForceLogout(ctx, targetUserID); err != nil {
		return ForceLogoutResponse{}, err
	}

	before, err := u.users.FindByID(ctx, targetUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return ForceLogoutResponse{}, NewNotFoundError("user not found")
	}
	if err != nil {
		return ForceLogoutResponse{}, storageError(err)
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ForceLogoutResponse{}, NewNotFoundError("user not found")
		}
		return ForceLogoutResponse{}, storageError(err)
	}

	//更新後を取得してnew_token_versionを返す
	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return ForceLogoutResponse{}, storageError(err)
	}

	if err := u.audit.Append(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionForceLogout,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   auditJSON(map[string]any{"token_version": before.TokenVersion}),
		AfterJSON:    auditJSON(map[string]any{"token_version": user.TokenVersion}),
	}); err != nil {
		return ForceLogoutResponse{}, storageError(err)
	}

	return ForceLogoutResponse{
		UserID:          user.ID,
		NewTokenVersion: user.TokenVersion,
	}, nil
}

// EnsureAdmin は管理者が居なければ作る。既にあればロールだけAdminに揃える
func (u *AuthUsecase) EnsureAdmin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	existing, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role == model.RoleAdmin {
			return nil
		}
		existing.Role = model.RoleAdmin
		return u.users.Update(ctx, existing)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	pwHash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}
	userName := email
	if at := strings.Index(email, "@"); at > 0 {
		userName = email[:at]
	}
	admin := &model.User{
		Email:        email,
		UserName:     userName,
		PasswordHash: pwHash,
		FullName:     "Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, admin); err != nil {
		return err
	}
	u.logger.InfoContext(ctx, "admin user created", slog.String("email", email))
	return nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		UserName:    u.UserName,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Roles:       []string{string(u.Role)},
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
