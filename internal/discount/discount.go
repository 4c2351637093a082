// Package discount проверяет купоны и рассчитывает скидки.
package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
)

var (
	ErrEmptyCode      = errors.New("coupon code is empty")
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponExpired  = errors.New("coupon expired")
	ErrBelowMinimum   = errors.New("purchase below coupon minimum")
)

// CouponFinder ищет купон по коду.
type CouponFinder interface {
	FindBy(ctx context.Context, code string) (model.Coupon, error)
}

// Result: результат применения купона к цене.
type Result struct {
	Amount decimal.Decimal `json:"discountAmount"`
	Final  decimal.Decimal `json:"finalPrice"`
}

// Engine проверяет купоны на текущий момент времени.
type Engine struct {
	coupons CouponFinder
	now     func() time.Time
}

func NewEngine(coupons CouponFinder, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{coupons: coupons, now: now}
}

// Validate находит купон по коду без учёта регистра и проверяет срок действия.
// Сохранённый статус купона не учитывается.
func (e *Engine) Validate(ctx context.Context, code string) (model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return model.Coupon{}, ErrEmptyCode
	}

	c, err := e.coupons.FindBy(ctx, code)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return model.Coupon{}, ErrCouponNotFound
		}
		return model.Coupon{}, fmt.Errorf("find coupon %s: %w", code, err)
	}

	if Expired(c, e.now()) {
		return c, ErrCouponExpired
	}
	return c, nil
}

// Apply проверяет купон и применяет его к цене.
func (e *Engine) Apply(ctx context.Context, code string, price decimal.Decimal) (model.Coupon, Result, error) {
	c, err := e.Validate(ctx, code)
	if err != nil {
		return c, Result{}, err
	}
	return c, Compute(c, price), nil
}

// Compute рассчитывает скидку. Сумма скидки не ограничивается ценой,
// итоговая цена не опускается ниже нуля.
func Compute(c model.Coupon, price decimal.Decimal) Result {
	value := decimal.NewFromFloat(c.Value)

	var amount decimal.Decimal
	if c.Type == model.CouponPercentage {
		amount = price.Mul(value).Div(decimal.NewFromInt(100))
	} else {
		amount = value
	}

	final := price.Sub(amount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Result{Amount: amount, Final: final}
}

// Expired сообщает, истёк ли срок действия купона. Купон без даты не истекает.
func Expired(c model.Coupon, now time.Time) bool {
	return !c.ExpiryDate.IsZero() && now.After(c.ExpiryDate.Time)
}

// EffectiveStatus возвращает статус купона для отображения.
func EffectiveStatus(c model.Coupon, now time.Time) model.CouponStatus {
	if Expired(c, now) {
		return model.CouponExpired
	}
	return c.Status
}

// CheckMinimum проверяет минимальную сумму покупки для купона.
func CheckMinimum(c model.Coupon, subtotal decimal.Decimal) error {
	if c.MinPurchase <= 0 {
		return nil
	}
	if subtotal.LessThan(decimal.NewFromFloat(c.MinPurchase)) {
		return fmt.Errorf("%w: minimum %.2f", ErrBelowMinimum, c.MinPurchase)
	}
	return nil
}
