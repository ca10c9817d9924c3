package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

const (
	userNameMinLen = 3
	userNameMaxLen = 50
	passwordMinLen = 6
	passwordMaxLen = 100
	emailMaxLen    = 100
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, req usecase.AuthRegisterRequest) error {
	userName := strings.TrimSpace(req.UserName)
	email := strings.TrimSpace(req.Email)

	// 必須チェック
	if userName == "" || email == "" || req.Password == "" {
		return usecase.NewValidationError("user_name, email and password are required")
	}
	if len(userName) < userNameMinLen || len(userName) > userNameMaxLen {
		return usecase.NewValidationError("user_name must be 3 to 50 characters")
	}
	if !IsEmailLike(email) {
		return usecase.NewValidationError("email is invalid")
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}
	//任意項目
	if len(req.FullName) > fullNameMaxLen {
		return usecase.NewValidationError("full_name is too long")
	}
	if req.PhoneNumber != "" && !phoneRe.MatchString(req.PhoneNumber) {
		return usecase.NewValidationError("phone_number is invalid")
	}

	// 重複チェック（DBが必要）
	if _, err := v.users.FindByEmail(ctx, email); err == nil {
		return usecase.NewConflictError("email already used")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return &usecase.Error{Kind: usecase.KindStorage, Message: "db error", Err: err}
	}
	if _, err := v.users.FindByUserName(ctx, userName); err == nil {
		return usecase.NewConflictError("user_name already used")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return &usecase.Error{Kind: usecase.KindStorage, Message: "db error", Err: err}
	}

	return nil
}

// ログインの入力を検証（emailでもuser_nameでもよい）
func (v *authValidator) ValidateLogin(ctx context.Context, login string, password string) error {
	if strings.TrimSpace(login) == "" || password == "" {
		return usecase.NewValidationError("login and password are required")
	}
	return nil
}

// パスワード変更
func (v *authValidator) ValidateChangePassword(ctx context.Context, current string, next string) error {
	if current == "" {
		return usecase.NewValidationError("current_password is required")
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	if current == next {
		return usecase.NewValidationError("new_password must differ from current_password")
	}
	return nil
}

// 強制ログアウトの入力を検証
func (v *authValidator) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	if targetUserID <= 0 {
		return usecase.NewValidationError("invalid user id")
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < passwordMinLen || len(pw) > passwordMaxLen {
		return usecase.NewValidationError("password must be 6 to 100 characters")
	}
	return nil
}

// 簡易メール形式をチェック
func IsEmailLike(s string) bool {
	return len(s) <= emailMaxLen && emailRe.MatchString(s)
}
