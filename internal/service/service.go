// Package service реализует бизнес-логику магазина luxedropship.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/discount"
	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/notify"
	"github.com/mmeshcher/luxedropship/internal/payment"
	"github.com/mmeshcher/luxedropship/internal/productfetch"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/repository"
	"github.com/mmeshcher/luxedropship/internal/seed"
	"github.com/mmeshcher/luxedropship/internal/session"
	"github.com/mmeshcher/luxedropship/internal/storage"
	"github.com/mmeshcher/luxedropship/internal/validation"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrUnavailable  = errors.New("external service unavailable")
	ErrForbidden    = errors.New("admin access required")
	ErrNoCustomer   = errors.New("order has no customer information")
)

// EntityRepository описывает типизированный репозиторий одной коллекции.
type EntityRepository[T any] interface {
	Add(ctx context.Context, item T) (T, error)
	All(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, fields recordstore.Fields) (T, error)
	Delete(ctx context.Context, id string) (bool, error)
	Append(ctx context.Context, id, field string, values ...any) (T, error)
	EnsureDefault(ctx context.Context, seed []T) (bool, error)
	EnsureDefaultFunc(ctx context.Context, build func() ([]T, error)) (bool, error)
}

// KeyedRepository: репозиторий с поиском по вторичному ключу.
type KeyedRepository[T any] interface {
	EntityRepository[T]
	FindBy(ctx context.Context, key string) (T, error)
}

// OrderRepository описывает объединённое хранилище заказов.
type OrderRepository interface {
	Add(ctx context.Context, order model.Order) (model.Order, error)
	Record(ctx context.Context, order model.Order) (model.Order, error)
	All(ctx context.Context) ([]model.Order, error)
	Get(ctx context.Context, id string) (model.Order, repository.Source, error)
	SetStatus(ctx context.Context, id string, status model.OrderStatus) (model.Order, error)
	Promote(ctx context.Context, id string) (model.Order, error)
	EnsureDefault(ctx context.Context) error
}

// ImportRepository описывает историю импорта товаров.
type ImportRepository interface {
	RecordImport(ctx context.Context, rec model.ImportRecord) (model.ImportRecord, error)
	SaveDraft(ctx context.Context, rec model.ImportRecord) (model.ImportRecord, error)
	Draft(ctx context.Context, timestamp string) (model.ImportRecord, error)
	History(ctx context.Context) ([]model.ImportRecord, error)
	Delete(ctx context.Context, timestamp string) (bool, error)
}

// ProductFetcher получает данные товаров с маркетплейса.
type ProductFetcher interface {
	FetchByURL(ctx context.Context, productURL string) (productfetch.Product, error)
	Search(ctx context.Context, query string) ([]productfetch.Product, error)
}

// InvoiceCreator создаёт счёт на оплату.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, in payment.InvoiceRequest) (*payment.Invoice, error)
}

// Deps содержит зависимости сервиса.
type Deps struct {
	Profiles  storage.KV
	Users     KeyedRepository[model.User]
	Products  EntityRepository[model.Product]
	Coupons   KeyedRepository[model.Coupon]
	Orders    OrderRepository
	Imports   ImportRepository
	Fetcher   ProductFetcher
	Payments  InvoiceCreator
	Publisher notify.Publisher
	Hasher    session.Hasher
	Logger    *zap.Logger
	Now       func() time.Time
}

// Service содержит бизнес-логику магазина.
type Service struct {
	profiles  storage.KV
	users     KeyedRepository[model.User]
	products  EntityRepository[model.Product]
	coupons   KeyedRepository[model.Coupon]
	orders    OrderRepository
	imports   ImportRepository
	fetcher   ProductFetcher
	payments  InvoiceCreator
	publisher notify.Publisher
	hasher    session.Hasher
	discounts *discount.Engine
	logger    *zap.Logger
	now       func() time.Time
}

// NewService создаёт сервис магазина.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Hasher == nil {
		d.Hasher = session.BcryptHasher{}
	}
	if d.Publisher == nil {
		d.Publisher = notify.Nop{}
	}
	return &Service{
		profiles:  d.Profiles,
		users:     d.Users,
		products:  d.Products,
		coupons:   d.Coupons,
		orders:    d.Orders,
		imports:   d.Imports,
		fetcher:   d.Fetcher,
		payments:  d.Payments,
		publisher: d.Publisher,
		hasher:    d.Hasher,
		discounts: discount.NewEngine(d.Coupons, d.Now),
		logger:    d.Logger,
		now:       d.Now,
	}
}

// Bootstrap записывает начальные данные в пустое хранилище: администратора,
// демонстрационный каталог и пустую коллекцию заказов. Пароли из начальных
// данных хешируются только при создании коллекции пользователей.
func (s *Service) Bootstrap(ctx context.Context, data seed.Data) error {
	seeded, err := s.users.EnsureDefaultFunc(ctx, func() ([]model.User, error) {
		users := make([]model.User, 0, len(data.Users))
		for _, u := range data.Users {
			hashed, err := s.hasher.Hash(u.Password)
			if err != nil {
				return nil, fmt.Errorf("hash seed password: %w", err)
			}
			u.Password = hashed
			users = append(users, u)
		}
		return users, nil
	})
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if seeded {
		s.logger.Info("seeded default users", zap.Int("count", len(data.Users)))
	}

	seeded, err = s.products.EnsureDefault(ctx, data.Products)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if seeded {
		s.logger.Info("seeded sample products", zap.Int("count", len(data.Products)))
	}

	if err := s.orders.EnsureDefault(ctx); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	return nil
}

// Session возвращает сессию профиля браузера.
func (s *Service) Session(profileID string) *session.Session {
	return session.New(s.profileKV(profileID), s.users, s.hasher)
}

// Cart возвращает корзину профиля браузера.
func (s *Service) Cart(profileID string) *session.Cart {
	return session.NewCart(s.profileKV(profileID))
}

func (s *Service) profileKV(profileID string) storage.KV {
	return storage.WithPrefix(s.profiles, "profile:"+profileID+":")
}

// IsAdmin перечитывает текущего пользователя профиля и проверяет его роль.
func (s *Service) IsAdmin(ctx context.Context, profileID string) (bool, error) {
	return s.Session(profileID).IsAdmin(ctx)
}

// Reason возвращает машиночитаемую причину ошибки для ответа клиенту.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, session.ErrInvalidPassword):
		return "invalid_password"
	case errors.Is(err, session.ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, session.ErrPasswordRequired):
		return "password_required"
	case errors.Is(err, session.ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(err, discount.ErrCouponNotFound), errors.Is(err, recordstore.ErrNotFound):
		return "not_found"
	case errors.Is(err, discount.ErrCouponExpired):
		return "expired"
	case errors.Is(err, discount.ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrNoCustomer):
		return "no_customer"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, discount.ErrEmptyCode):
		return "invalid_input"
	}

	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return "invalid_input"
	}
	return "internal_error"
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
