package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/repository"
	"github.com/mmeshcher/luxedropship/internal/validation"
)

// OrderView: заказ в нормализованном для отображения виде.
type OrderView struct {
	ID            string            `json:"id"`
	Source        repository.Source `json:"source,omitempty"`
	Status        model.OrderStatus `json:"status"`
	Items         []model.OrderItem `json:"items"`
	Total         float64           `json:"total"`
	Discount      float64           `json:"discount,omitempty"`
	CouponCode    string            `json:"couponCode,omitempty"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	Customer      *model.Customer   `json:"customer,omitempty"`
	UserID        string            `json:"userId,omitempty"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	CreatedAt     model.Timestamp   `json:"createdAt"`
}

// Orders возвращает заказы обоих хранилищ, новые первыми.
func (s *Service) Orders(ctx context.Context) ([]OrderView, error) {
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}

	users := s.userIndex(ctx)
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView(o, "", users))
	}
	return out, nil
}

// Order возвращает заказ по идентификатору из любого хранилища.
func (s *Service) Order(ctx context.Context, id string) (OrderView, error) {
	o, src, err := s.orders.Get(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	return orderView(o, src, s.userIndex(ctx)), nil
}

// SetOrderStatus меняет статус заказа в хранилище, где он находится.
func (s *Service) SetOrderStatus(ctx context.Context, id string, status model.OrderStatus) (OrderView, error) {
	if err := validation.ValidateOrderStatus(status); err != nil {
		return OrderView{}, invalid(err)
	}
	if _, err := s.orders.SetStatus(ctx, id, status); err != nil {
		return OrderView{}, err
	}
	return s.Order(ctx, id)
}

// PromoteOrder переносит заказ из журнала оформления в основное хранилище.
func (s *Service) PromoteOrder(ctx context.Context, id string) (OrderView, error) {
	o, err := s.orders.Promote(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	return orderView(o, repository.SourcePrimary, s.userIndex(ctx)), nil
}

// FulfillmentText формирует сводку заказа для оформления закупки у
// поставщика. Требуются контактные данные покупателя.
func (s *Service) FulfillmentText(ctx context.Context, id string) (string, error) {
	o, _, err := s.orders.Get(ctx, id)
	if err != nil {
		return "", err
	}
	c := o.Customer
	if c == nil {
		return "", ErrNoCustomer
	}

	var b strings.Builder
	b.WriteString("=== ALIEXPRESS ORDER INFO ===\n")
	fmt.Fprintf(&b, "Order ID: %s\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s\n", c.Name)
	fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
	fmt.Fprintf(&b, "Email: %s\n", c.Email)
	fmt.Fprintf(&b, "Full Address:\n%s\n\n", c.FullAddress)

	b.WriteString("Items to Order:\n")
	for i, item := range o.Lines() {
		fmt.Fprintf(&b, "%d. %s (Quantity: %d)\n", i+1, item.Name, item.Quantity)
	}

	fmt.Fprintf(&b, "\nTotal Amount: $%.2f\n", o.GrandTotal())
	fmt.Fprintf(&b, "Payment Method: %s\n", orDefault(o.PaymentMethod, "N/A"))
	fmt.Fprintf(&b, "Status: %s\n", o.CurrentStatus())
	fmt.Fprintf(&b, "Order Date: %s", formatOrderTime(o.EffectiveTime()))
	return b.String(), nil
}

// userIndex возвращает пользователей по идентификатору. Ошибка чтения
// не мешает показу заказов: покупатель отображается как гость.
func (s *Service) userIndex(ctx context.Context) map[string]model.User {
	users, err := s.users.All(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("read users for orders", zap.Error(err))
		}
		return nil
	}
	idx := make(map[string]model.User, len(users))
	for _, u := range users {
		idx[u.ID] = u
	}
	return idx
}

func orderView(o model.Order, src repository.Source, users map[string]model.User) OrderView {
	v := OrderView{
		ID:            o.ID,
		Source:        src,
		Status:        o.CurrentStatus(),
		Items:         o.Lines(),
		Total:         o.GrandTotal(),
		Discount:      o.Discount,
		CouponCode:    o.CouponCode,
		CustomerName:  "Guest",
		Customer:      o.Customer,
		UserID:        o.UserID,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     model.NewTimestamp(o.EffectiveTime()),
	}

	u, known := users[o.UserID]
	switch {
	case o.Customer != nil:
		v.CustomerName = o.Customer.Name
		if o.Customer.Phone != "" {
			v.CustomerName += " | " + o.Customer.Phone
		}
		v.CustomerEmail = o.Customer.Email
	case o.UserID != "" && known:
		v.CustomerName = u.DisplayName()
	}
	if v.CustomerEmail == "" && known {
		v.CustomerEmail = u.Email
	}
	return v
}

func formatOrderTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
