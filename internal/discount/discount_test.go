package discount

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
)

type stubCoupons struct {
	byCode   map[string]model.Coupon
	lastCode string
}

func (s *stubCoupons) FindBy(ctx context.Context, code string) (model.Coupon, error) {
	s.lastCode = code
	c, ok := s.byCode[code]
	if !ok {
		return model.Coupon{}, recordstore.ErrNotFound
	}
	return c, nil
}

func date(t *testing.T, s string) model.Date {
	t.Helper()
	d, ok := model.ParseDate(s)
	require.True(t, ok, s)
	return d
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		coupon     model.Coupon
		price      int64
		wantAmount string
		wantFinal  string
	}{
		{
			name:       "percentage",
			coupon:     model.Coupon{Type: model.CouponPercentage, Value: 20},
			price:      100,
			wantAmount: "20",
			wantFinal:  "80",
		},
		{
			name:       "fixed clamped at zero",
			coupon:     model.Coupon{Type: model.CouponFixed, Value: 150},
			price:      100,
			wantAmount: "150",
			wantFinal:  "0",
		},
		{
			name:       "fixed",
			coupon:     model.Coupon{Type: model.CouponFixed, Value: 15.5},
			price:      100,
			wantAmount: "15.5",
			wantFinal:  "84.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.coupon, decimal.NewFromInt(tt.price))
			assert.Equal(t, tt.wantAmount, got.Amount.String())
			assert.Equal(t, tt.wantFinal, got.Final.String())
		})
	}
}

func TestEngine_Validate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	coupons := &stubCoupons{byCode: map[string]model.Coupon{
		"SALE20":  {Code: "SALE20", Type: model.CouponPercentage, Value: 20, Status: model.CouponActive, ExpiryDate: date(t, "2025-12-31")},
		"OLD":     {Code: "OLD", Status: model.CouponActive, ExpiryDate: date(t, "2025-01-01")},
		"FOREVER": {Code: "FOREVER", Status: model.CouponExpired},
	}}
	engine := NewEngine(coupons, func() time.Time { return now })

	c, err := engine.Validate(ctx, "  sale20 ")
	require.NoError(t, err)
	assert.Equal(t, "SALE20", c.Code)
	assert.Equal(t, "SALE20", coupons.lastCode)

	_, err = engine.Validate(ctx, "missing")
	assert.ErrorIs(t, err, ErrCouponNotFound)

	_, err = engine.Validate(ctx, "old")
	assert.ErrorIs(t, err, ErrCouponExpired)

	_, err = engine.Validate(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyCode)

	_, err = engine.Validate(ctx, "forever")
	assert.NoError(t, err)

	_, res, err := engine.Apply(ctx, "SALE20", decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, "40", res.Final.String())
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	active := model.Coupon{Status: model.CouponActive, ExpiryDate: date(t, "2025-01-01")}
	assert.Equal(t, model.CouponExpired, EffectiveStatus(active, now))

	future := model.Coupon{Status: model.CouponActive, ExpiryDate: date(t, "2026-01-01")}
	assert.Equal(t, model.CouponActive, EffectiveStatus(future, now))

	sameDay := model.Coupon{Status: model.CouponActive, ExpiryDate: date(t, "2025-06-01")}
	assert.Equal(t, model.CouponActive, EffectiveStatus(sameDay, now))
	assert.Equal(t, model.CouponExpired, EffectiveStatus(sameDay, now.Add(time.Millisecond)))
}

func TestCheckMinimum(t *testing.T) {
	c := model.Coupon{MinPurchase: 50}

	assert.NoError(t, CheckMinimum(c, decimal.NewFromInt(50)))
	assert.ErrorIs(t, CheckMinimum(c, decimal.NewFromInt(49)), ErrBelowMinimum)
	assert.NoError(t, CheckMinimum(model.Coupon{}, decimal.Zero))
}
