// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode"

	"github.com/mmeshcher/luxedropship/internal/model"
)

// FieldError описывает ошибку значения одного поля.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func fieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// IsValidEmail проверяет, что строка является одиночным адресом электронной почты без имени.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// IsValidCouponCode проверяет код купона: латинские буквы, цифры, дефис
// и подчёркивание, не длиннее 32 символов.
func IsValidCouponCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 32 {
		return false
	}
	for _, r := range code {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

// ValidateAmount проверяет, что денежная сумма конечна и неотрицательна.
func ValidateAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fieldError(field, "must be a number")
	}
	if v < 0 {
		return fieldError(field, "must not be negative")
	}
	return nil
}

// ValidateUser проверяет данные пользователя, вводимые администратором.
func ValidateUser(u model.User) error {
	if !IsValidEmail(u.Email) {
		return fieldError("email", "invalid email")
	}
	switch u.Role {
	case "", model.RoleAdmin, model.RoleCustomer:
	default:
		return fieldError("role", "unknown role")
	}
	return nil
}

// ValidateProduct проверяет товар каталога.
func ValidateProduct(p model.Product) error {
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.NameEn) == "" {
		return fieldError("name", "required")
	}
	if err := ValidateAmount("price", p.Price); err != nil {
		return err
	}
	if err := ValidateAmount("originalPrice", p.OriginalPrice); err != nil {
		return err
	}
	if err := ValidateAmount("shippingFee", p.ShippingFee); err != nil {
		return err
	}
	if p.Stock < 0 {
		return fieldError("stock", "must not be negative")
	}
	return nil
}

// ValidateCoupon проверяет купон.
func ValidateCoupon(c model.Coupon) error {
	if !IsValidCouponCode(c.Code) {
		return fieldError("code", "invalid coupon code")
	}
	if err := ValidateAmount("value", c.Value); err != nil {
		return err
	}
	switch c.Type {
	case model.CouponPercentage:
		if c.Value > 100 {
			return fieldError("value", "percentage must be between 0 and 100")
		}
	case model.CouponFixed:
	default:
		return fieldError("type", "must be percentage or fixed")
	}
	if err := ValidateAmount("minPurchase", c.MinPurchase); err != nil {
		return err
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return fieldError("usageLimit", "must not be negative")
	}
	return nil
}

// ValidateOrderStatus проверяет статус заказа.
func ValidateOrderStatus(s model.OrderStatus) error {
	if !s.Valid() {
		return fieldError("status", "must be pending, completed or cancelled")
	}
	return nil
}

// ValidateCustomer проверяет контактные данные гостевого покупателя.
func ValidateCustomer(c model.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return fieldError("customer.name", "required")
	}
	if strings.TrimSpace(c.FullAddress) == "" {
		return fieldError("customer.fullAddress", "required")
	}
	if c.Email != "" && !IsValidEmail(c.Email) {
		return fieldError("customer.email", "invalid email")
	}
	return nil
}
