package validator

import (
	"regexp"
	"strings"
	"time"

	"restaurant/internal/usecase"
)

const (
	fullNameMaxLen = 100
	addressMaxLen  = 200
	paymentMaxLen  = 50
)

// 数字・空白・括弧・ハイフン、先頭の+だけ
var phoneRe = regexp.MustCompile(`^\+?[0-9 ()\-]{5,20}$`)

type customerValidator struct {
	now func() time.Time
}

func NewCustomerValidator() usecase.CustomerValidator {
	return &customerValidator{now: time.Now}
}

func (v *customerValidator) ValidateCustomer(fullName string, phone string, loyaltyPoints int) error {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)

	if fullName == "" {
		return usecase.NewValidationError("full_name is required")
	}
	if len(fullName) > fullNameMaxLen {
		return usecase.NewValidationError("full_name is too long")
	}
	if phone == "" {
		return usecase.NewValidationError("phone_number is required")
	}
	if !phoneRe.MatchString(phone) {
		return usecase.NewValidationError("phone_number is invalid")
	}
	if loyaltyPoints < 0 {
		return usecase.NewValidationError("loyalty_points must be >= 0")
	}
	return nil
}

func (v *customerValidator) ValidateProfile(email string, dateOfBirth time.Time, address string, paymentMethod string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return usecase.NewValidationError("email is required")
	}
	if !IsEmailLike(email) {
		return usecase.NewValidationError("email is invalid")
	}
	if dateOfBirth.IsZero() {
		return usecase.NewValidationError("date_of_birth is required")
	}
	//未来日は不可
	if dateOfBirth.After(v.now()) {
		return usecase.NewValidationError("date_of_birth must be in the past")
	}
	if len(address) > addressMaxLen {
		return usecase.NewValidationError("address is too long")
	}
	if len(paymentMethod) > paymentMaxLen {
		return usecase.NewValidationError("preferred_payment_method is too long")
	}
	return nil
}
