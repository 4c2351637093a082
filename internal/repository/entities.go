// Package repository содержит типизированные репозитории сущностей магазина
// поверх хранилища записей.
package repository

import (
	"time"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
)

// Users: репозиторий пользователей с вторичным ключом email.
type Users = recordstore.Repository[model.User]

// Products: репозиторий товаров каталога.
type Products = recordstore.Repository[model.Product]

// Coupons: репозиторий купонов с вторичным ключом code.
type Coupons = recordstore.Repository[model.Coupon]

// NewUsers создаёт репозиторий пользователей. Роль по умолчанию: customer,
// email уникален без учёта регистра.
func NewUsers(store *recordstore.Store, now func() time.Time) *Users {
	return recordstore.NewRepository[model.User](store, recordstore.Options{
		Collection:   recordstore.CollectionUsers,
		IDPrefix:     "user",
		KeyField:     "email",
		NormalizeKey: recordstore.LowerKey,
		UniqueKey:    true,
		Defaults:     map[string]any{"role": model.RoleCustomer},
		Now:          now,
	})
}

// NewProducts создаёт репозиторий товаров.
func NewProducts(store *recordstore.Store, now func() time.Time) *Products {
	return recordstore.NewRepository[model.Product](store, recordstore.Options{
		Collection: recordstore.CollectionProducts,
		IDPrefix:   "product",
		Now:        now,
	})
}

// NewCoupons создаёт репозиторий купонов. Коды сравниваются без учёта регистра,
// статус по умолчанию: active.
func NewCoupons(store *recordstore.Store, now func() time.Time) *Coupons {
	return recordstore.NewRepository[model.Coupon](store, recordstore.Options{
		Collection:   recordstore.CollectionCoupons,
		IDPrefix:     "coupon",
		KeyField:     "code",
		NormalizeKey: recordstore.UpperKey,
		Defaults:     map[string]any{"status": model.CouponActive},
		Now:          now,
	})
}
