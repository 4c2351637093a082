package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/discount"
	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/notify"
	"github.com/mmeshcher/luxedropship/internal/payment"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/session"
	"github.com/mmeshcher/luxedropship/internal/validation"
)

// PaymentCrypto: способ оплаты через сервис выставления счетов.
const PaymentCrypto = "crypto"

// CartView: содержимое корзины для отображения.
type CartView struct {
	Items []model.CartItem  `json:"items"`
	Lines []model.OrderItem `json:"lines"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

// CartContents возвращает корзину профиля.
func (s *Service) CartContents(ctx context.Context, profileID string) (CartView, error) {
	items, err := s.Cart(profileID).Items(ctx)
	if err != nil {
		return CartView{}, err
	}
	return cartView(items), nil
}

// AddToCart добавляет в корзину ещё одну запись товара каталога.
func (s *Service) AddToCart(ctx context.Context, profileID, productID, lang string) (CartView, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return CartView{}, err
	}

	items, err := s.Cart(profileID).Add(ctx, model.CartItem{
		ID:    p.ID,
		Name:  p.Title(lang),
		Price: p.Price,
		Image: p.Image,
	})
	if err != nil {
		return CartView{}, err
	}
	return cartView(items), nil
}

// RemoveFromCart удаляет одну запись товара из корзины.
func (s *Service) RemoveFromCart(ctx context.Context, profileID, productID string) (CartView, error) {
	cart := s.Cart(profileID)
	removed, err := cart.Remove(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	if !removed {
		return CartView{}, recordstore.ErrNotFound
	}
	return s.CartContents(ctx, profileID)
}

// ClearCart очищает корзину профиля.
func (s *Service) ClearCart(ctx context.Context, profileID string) error {
	return s.Cart(profileID).Clear(ctx)
}

// CouponQuote: результат применения купона.
type CouponQuote struct {
	Coupon model.Coupon    `json:"coupon"`
	Price  decimal.Decimal `json:"price"`
	discount.Result
}

// ApplyCoupon проверяет купон и рассчитывает скидку для цены. Если цена не
// задана, скидка считается от суммы корзины профиля.
func (s *Service) ApplyCoupon(ctx context.Context, profileID, code string, price *float64) (CouponQuote, error) {
	var base decimal.Decimal
	if price != nil {
		if err := validation.ValidateAmount("price", *price); err != nil {
			return CouponQuote{}, invalid(err)
		}
		base = decimal.NewFromFloat(*price)
	} else {
		total, err := s.Cart(profileID).Total(ctx)
		if err != nil {
			return CouponQuote{}, err
		}
		base = total
	}

	c, res, err := s.discounts.Apply(ctx, code, base)
	if err != nil {
		return CouponQuote{}, err
	}
	return CouponQuote{Coupon: c, Price: base, Result: res}, nil
}

// CheckoutRequest содержит параметры оформления заказа.
type CheckoutRequest struct {
	CouponCode    string          `json:"couponCode"`
	PaymentMethod string          `json:"paymentMethod"`
	Currency      string          `json:"currency"`
	Customer      *model.Customer `json:"customer"`
	ReturnURL     string          `json:"returnUrl"`
	CancelURL     string          `json:"cancelUrl"`
}

// CheckoutResult: результат оформления заказа.
type CheckoutResult struct {
	Order      model.Order `json:"order"`
	PaymentURL string      `json:"paymentUrl,omitempty"`
}

// Checkout оформляет заказ из корзины профиля: применяет купон, выставляет
// счёт для оплаты криптовалютой, сохраняет заказ в журнал и очищает корзину.
// Если счёт выставить не удалось, заказ не сохраняется и корзина не меняется.
func (s *Service) Checkout(ctx context.Context, profileID string, req CheckoutRequest) (CheckoutResult, error) {
	cart := s.Cart(profileID)
	items, err := cart.Items(ctx)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(items) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	userID, err := s.currentUserID(ctx, profileID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if req.Customer != nil {
		if err := validation.ValidateCustomer(*req.Customer); err != nil {
			return CheckoutResult{}, invalid(err)
		}
	} else if userID == "" {
		return CheckoutResult{}, invalid(errors.New("customer information required for guest checkout"))
	}

	view := cartView(items)
	total := view.Total
	order := model.Order{
		ID:            recordstore.NewID("ORDER"),
		Items:         view.Lines,
		Currency:      strings.ToLower(req.Currency),
		Status:        model.OrderStatusPending,
		UserID:        userID,
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
	}
	if order.Currency == "" {
		order.Currency = "usd"
	}

	if code := strings.TrimSpace(req.CouponCode); code != "" {
		c, err := s.discounts.Validate(ctx, code)
		if err != nil {
			return CheckoutResult{}, err
		}
		if err := discount.CheckMinimum(c, total); err != nil {
			return CheckoutResult{}, err
		}
		res := discount.Compute(c, total)
		order.CouponCode = c.Code
		order.Discount = res.Amount.InexactFloat64()
		total = res.Final
	}
	order.Total = total.Round(2).InexactFloat64()

	var result CheckoutResult
	if req.PaymentMethod == PaymentCrypto {
		invoice, err := s.createInvoice(ctx, order, req)
		if err != nil {
			return CheckoutResult{}, err
		}
		result.PaymentURL = invoice.InvoiceURL
	}

	recorded, err := s.orders.Record(ctx, order)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("record order: %w", err)
	}
	result.Order = recorded

	if err := cart.Clear(ctx); err != nil {
		s.logger.Warn("clear cart after checkout", zap.String("order_id", recorded.ID), zap.Error(err))
	}

	event := notify.OrderPlaced{
		OrderID:       recorded.ID,
		UserID:        recorded.UserID,
		Items:         len(items),
		Total:         recorded.Total,
		Discount:      recorded.Discount,
		CouponCode:    recorded.CouponCode,
		PaymentMethod: recorded.PaymentMethod,
		PlacedAt:      s.now().UTC(),
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Warn("order event not published", zap.String("order_id", recorded.ID), zap.Error(err))
	}

	s.logger.Info("order placed",
		zap.String("order_id", recorded.ID),
		zap.Float64("total", recorded.Total),
		zap.String("payment_method", recorded.PaymentMethod),
	)
	return result, nil
}

func (s *Service) createInvoice(ctx context.Context, order model.Order, req CheckoutRequest) (*payment.Invoice, error) {
	if s.payments == nil {
		return nil, unavailable("create invoice", payment.ErrNotConfigured)
	}

	in := payment.InvoiceRequest{
		Amount:    order.Total,
		Currency:  order.Currency,
		OrderID:   order.ID,
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
	}
	if order.Customer != nil {
		in.CustomerEmail = order.Customer.Email
	}

	invoice, err := s.payments.CreateInvoice(ctx, in)
	if err != nil {
		return nil, unavailable("create invoice", err)
	}
	return invoice, nil
}

func cartView(items []model.CartItem) CartView {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price))
	}
	return CartView{
		Items: items,
		Lines: session.GroupLines(items),
		Count: len(items),
		Total: total,
	}
}
