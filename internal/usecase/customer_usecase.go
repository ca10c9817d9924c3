package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"gorm.io/datatypes"
)

const topLoyaltyMax = 100

// 顧客入力の検証（validatorパッケージが実装）
type CustomerValidator interface {
	ValidateCustomer(fullName string, phone string, loyaltyPoints int) error
	ValidateProfile(email string, dateOfBirth time.Time, address string, paymentMethod string) error
}

type CustomerUsecase struct {
	customers repo.CustomerRepository
	orders    repo.OrderRepository
	validator CustomerValidator
}

// DI
func NewCustomerUsecase(customers repo.CustomerRepository, orders repo.OrderRepository, validator CustomerValidator) *CustomerUsecase {
	return &CustomerUsecase{customers: customers, orders: orders, validator: validator}
}

type CustomerInput struct {
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	LoyaltyPoints int    `json:"loyalty_points"`
}

// nilは変更しない
type CustomerPatch struct {
	FullName      *string `json:"full_name"`
	PhoneNumber   *string `json:"phone_number"`
	LoyaltyPoints *int    `json:"loyalty_points"`
}

type ProfileInput struct {
	Email                  string `json:"email"`
	DateOfBirth            string `json:"date_of_birth"` // YYYY-MM-DD
	Address                string `json:"address"`
	PreferredPaymentMethod string `json:"preferred_payment_method"`
}

func (u *CustomerUsecase) Create(ctx context.Context, in CustomerInput) (model.Customer, error) {
	c := model.Customer{
		FullName:      strings.TrimSpace(in.FullName),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		LoyaltyPoints: in.LoyaltyPoints,
	}
	if err := u.validator.ValidateCustomer(c.FullName, c.PhoneNumber, c.LoyaltyPoints); err != nil {
		return model.Customer{}, err
	}

	if err := u.customers.Create(ctx, &c); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return model.Customer{}, NewConflictError("phone number already registered")
		}
		return model.Customer{}, storageError(err)
	}
	return c, nil
}

// プロフィール込みで取得
func (u *CustomerUsecase) GetWithProfile(ctx context.Context, customerID int64) (model.Customer, error) {
	if customerID <= 0 {
		return model.Customer{}, NewValidationError("invalid customer id")
	}
	c, err := u.customers.FindByID(ctx, customerID)
	if err != nil {
		return model.Customer{}, customerLookupError(err)
	}
	return c, nil
}

func (u *CustomerUsecase) GetByPhone(ctx context.Context, phone string) (model.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return model.Customer{}, NewValidationError("phone_number is required")
	}
	c, err := u.customers.FindByPhone(ctx, phone)
	if err != nil {
		return model.Customer{}, customerLookupError(err)
	}
	return c, nil
}

func (u *CustomerUsecase) List(ctx context.Context) ([]model.Customer, error) {
	cs, err := u.customers.List(ctx)
	if err != nil {
		return []model.Customer{}, storageError(err)
	}
	return cs, nil
}

// ポイント上位（1〜100件）
func (u *CustomerUsecase) TopByLoyalty(ctx context.Context, n int) ([]model.Customer, error) {
	if n < 1 || n > topLoyaltyMax {
		return []model.Customer{}, NewValidationError("count must be between 1 and 100")
	}
	cs, err := u.customers.TopByLoyalty(ctx, n)
	if err != nil {
		return []model.Customer{}, storageError(err)
	}
	return cs, nil
}

func (u *CustomerUsecase) Update(ctx context.Context, customerID int64, p CustomerPatch) (model.Customer, error) {
	if customerID <= 0 {
		return model.Customer{}, NewValidationError("invalid customer id")
	}
	c, err := u.customers.FindByID(ctx, customerID)
	if err != nil {
		return model.Customer{}, customerLookupError(err)
	}

	if p.FullName != nil {
		c.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = strings.TrimSpace(*p.PhoneNumber)
	}
	if p.LoyaltyPoints != nil {
		c.LoyaltyPoints = *p.LoyaltyPoints
	}
	if err := u.validator.ValidateCustomer(c.FullName, c.PhoneNumber, c.LoyaltyPoints); err != nil {
		return model.Customer{}, err
	}

	if err := u.customers.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return model.Customer{}, NewConflictError("phone number already registered")
		}
		return model.Customer{}, customerLookupError(err)
	}
	return c, nil
}

// 注文が残っている顧客は消せない（409）
func (u *CustomerUsecase) Delete(ctx context.Context, customerID int64) error {
	if customerID <= 0 {
		return NewValidationError("invalid customer id")
	}
	err := u.customers.Delete(ctx, customerID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrReferenced):
		return NewConflictError("customer has orders")
	default:
		return customerLookupError(err)
	}
}

// プロフィールの作成 or 更新
func (u *CustomerUsecase) UpsertProfile(ctx context.Context, customerID int64, in ProfileInput) (model.Customer, error) {
	if customerID <= 0 {
		return model.Customer{}, NewValidationError("invalid customer id")
	}

	dob, err := parseDate(in.DateOfBirth)
	if err != nil {
		return model.Customer{}, NewValidationError("date_of_birth must be YYYY-MM-DD")
	}
	p := model.CustomerProfile{
		CustomerID:             customerID,
		Email:                  strings.TrimSpace(in.Email),
		DateOfBirth:            datatypes.Date(dob),
		Address:                strings.TrimSpace(in.Address),
		PreferredPaymentMethod: strings.TrimSpace(in.PreferredPaymentMethod),
	}
	if err := u.validator.ValidateProfile(p.Email, dob, p.Address, p.PreferredPaymentMethod); err != nil {
		return model.Customer{}, err
	}

	//顧客の存在確認
	c, err := u.customers.FindByID(ctx, customerID)
	if err != nil {
		return model.Customer{}, customerLookupError(err)
	}

	if err := u.customers.UpsertProfile(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return model.Customer{}, NewConflictError("email already registered")
		}
		return model.Customer{}, storageError(err)
	}
	c.Profile = &p
	return c, nil
}

// 顧客の注文一覧（新しい順）
func (u *CustomerUsecase) ListOrders(ctx context.Context, customerID int64) ([]OrderView, error) {
	if customerID <= 0 {
		return []OrderView{}, NewValidationError("invalid customer id")
	}
	if _, err := u.customers.FindByID(ctx, customerID); err != nil {
		return []OrderView{}, customerLookupError(err)
	}
	orders, err := u.orders.List(ctx, repo.OrderListFilter{CustomerID: &customerID})
	if err != nil {
		return []OrderView{}, storageError(err)
	}
	return toOrderViews(orders), nil
}

func customerLookupError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("customer not found")
	}
	return storageError(err)
}

// YYYY-MM-DD（RFC3339も受ける）
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
