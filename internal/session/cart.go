package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/storage"
)

const keyCart = "cart"

// Cart: корзина профиля. Количество товара выражается числом одинаковых
// записей: добавление всегда дописывает новую запись.
type Cart struct {
	kv storage.KV
}

func NewCart(kv storage.KV) *Cart {
	return &Cart{kv: kv}
}

// Items возвращает записи корзины. Повреждённые данные читаются как пустая корзина.
func (c *Cart) Items(ctx context.Context) ([]model.CartItem, error) {
	raw, ok, err := c.kv.Get(ctx, keyCart)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []model.CartItem{}, nil
	}

	var items []model.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []model.CartItem{}, nil
	}
	return items, nil
}

func (c *Cart) Add(ctx context.Context, item model.CartItem) ([]model.CartItem, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	items = append(items, item)
	return items, c.save(ctx, items)
}

// Remove удаляет первую запись с указанным товаром.
func (c *Cart) Remove(ctx context.Context, productID string) (bool, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return false, err
	}
	for i, it := range items {
		if it.ID == productID {
			return true, c.save(ctx, append(items[:i], items[i+1:]...))
		}
	}
	return false, nil
}

func (c *Cart) Clear(ctx context.Context) error {
	return c.kv.Remove(ctx, keyCart)
}

// Lines группирует одинаковые записи в строки заказа с количеством,
// сохраняя порядок первого появления товара.
func (c *Cart) Lines(ctx context.Context) ([]model.OrderItem, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	return GroupLines(items), nil
}

// Total возвращает сумму цен всех записей корзины.
func (c *Cart) Total(ctx context.Context) (decimal.Decimal, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price))
	}
	return total, nil
}

// GroupLines сворачивает записи корзины в строки заказа.
func GroupLines(items []model.CartItem) []model.OrderItem {
	lines := make([]model.OrderItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ID]; ok {
			lines[i].Quantity++
			continue
		}
		index[it.ID] = len(lines)
		lines = append(lines, model.OrderItem{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  1,
			Image:     it.Image,
		})
	}
	return lines
}

func (c *Cart) save(ctx context.Context, items []model.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.kv.Set(ctx, keyCart, string(data)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
