package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
)

// OrderSource описывает одно физическое хранилище заказов.
type OrderSource interface {
	Add(ctx context.Context, o model.Order) (model.Order, error)
	Insert(ctx context.Context, o model.Order) (model.Order, error)
	All(ctx context.Context) ([]model.Order, error)
	Get(ctx context.Context, id string) (model.Order, error)
	Update(ctx context.Context, id string, fields recordstore.Fields) (model.Order, error)
	Delete(ctx context.Context, id string) (bool, error)
	EnsureDefault(ctx context.Context, seed []model.Order) (bool, error)
}

// Source указывает, в каком хранилище найден заказ.
type Source string

const (
	SourcePrimary Source = "primary"
	SourceLedger  Source = "ledger"
)

// NewPrimaryOrders создаёт основное хранилище заказов (коллекция orders).
func NewPrimaryOrders(store *recordstore.Store, now func() time.Time) *recordstore.Repository[model.Order] {
	return recordstore.NewRepository[model.Order](store, recordstore.Options{
		Collection: recordstore.CollectionOrders,
		IDPrefix:   "order",
		Defaults:   map[string]any{"status": model.OrderStatusPending},
		Now:        now,
	})
}

// NewLedgerOrders создаёт журнал заказов оформления (коллекция orderLedger).
// Записи журнала помечаются полем date.
func NewLedgerOrders(store *recordstore.Store, now func() time.Time) *recordstore.Repository[model.Order] {
	return recordstore.NewRepository[model.Order](store, recordstore.Options{
		Collection: recordstore.CollectionOrderLedger,
		IDPrefix:   "ORDER",
		Defaults:   map[string]any{"status": model.OrderStatusPending},
		TimeField:  "date",
		Now:        now,
	})
}

// Orders объединяет основное хранилище заказов и журнал оформления.
// Вызывающий код видит единый список заказов. Журнал может отсутствовать.
type Orders struct {
	primary OrderSource
	ledger  OrderSource
}

// NewOrders создаёт объединённый репозиторий заказов. ledger может быть nil.
func NewOrders(primary, ledger OrderSource) *Orders {
	return &Orders{primary: primary, ledger: ledger}
}

// Add сохраняет заказ в основном хранилище.
func (o *Orders) Add(ctx context.Context, order model.Order) (model.Order, error) {
	return o.primary.Add(ctx, order)
}

// Record сохраняет заказ, оформленный через корзину, в журнал. Заданный
// идентификатор сохраняется. Без журнала заказ сохраняется в основное хранилище.
func (o *Orders) Record(ctx context.Context, order model.Order) (model.Order, error) {
	if o.ledger == nil {
		return o.primary.Insert(ctx, order)
	}
	return o.ledger.Insert(ctx, order)
}

// EnsureDefault создаёт пустую основную коллекцию заказов, если её нет.
func (o *Orders) EnsureDefault(ctx context.Context) error {
	_, err := o.primary.EnsureDefault(ctx, nil)
	return err
}

// All возвращает заказы обоих хранилищ, отсортированные по убыванию
// эффективного времени. Совпадающие идентификаторы не объединяются.
func (o *Orders) All(ctx context.Context) ([]model.Order, error) {
	orders, err := o.primary.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read primary orders: %w", err)
	}

	if o.ledger != nil {
		ledger, err := o.ledger.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("read ledger orders: %w", err)
		}
		orders = append(orders, ledger...)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].EffectiveTime().After(orders[j].EffectiveTime())
	})
	return orders, nil
}

// Get ищет заказ сначала в основном хранилище, затем в журнале.
func (o *Orders) Get(ctx context.Context, id string) (model.Order, Source, error) {
	order, err := o.primary.Get(ctx, id)
	if err == nil {
		return order, SourcePrimary, nil
	}
	if !errors.Is(err, recordstore.ErrNotFound) {
		return model.Order{}, "", err
	}

	if o.ledger == nil {
		return model.Order{}, "", recordstore.ErrNotFound
	}

	order, err = o.ledger.Get(ctx, id)
	if err != nil {
		return model.Order{}, "", err
	}
	return order, SourceLedger, nil
}

// SetStatus меняет статус заказа в том хранилище, где он найден.
func (o *Orders) SetStatus(ctx context.Context, id string, status model.OrderStatus) (model.Order, error) {
	_, src, err := o.Get(ctx, id)
	if err != nil {
		return model.Order{}, err
	}

	return o.source(src).Update(ctx, id, recordstore.Fields{"status": status})
}

// Promote переносит заказ из журнала в основное хранилище, сохраняя его
// идентификатор. Время создания берётся из эффективного времени заказа.
func (o *Orders) Promote(ctx context.Context, id string) (model.Order, error) {
	if o.ledger == nil {
		return model.Order{}, recordstore.ErrNotFound
	}

	order, err := o.ledger.Get(ctx, id)
	if err != nil {
		return model.Order{}, err
	}

	order.CreatedAt = model.NewTimestamp(order.EffectiveTime())
	order.Date = model.Timestamp{}

	promoted, err := o.primary.Insert(ctx, order)
	if err != nil {
		return model.Order{}, fmt.Errorf("promote order %s: %w", id, err)
	}

	if _, err := o.ledger.Delete(ctx, id); err != nil {
		return model.Order{}, fmt.Errorf("remove promoted order %s from ledger: %w", id, err)
	}

	return promoted, nil
}

func (o *Orders) source(src Source) OrderSource {
	if src == SourceLedger {
		return o.ledger
	}
	return o.primary
}
