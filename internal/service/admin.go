package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/session"
	"github.com/mmeshcher/luxedropship/internal/validation"
)

// Dashboard возвращает сводные показатели: число пользователей, товаров,
// заказов обоих хранилищ и выручку по ним.
func (s *Service) Dashboard(ctx context.Context) (model.Dashboard, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	products, err := s.products.All(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	orders, err := s.orders.All(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(o.GrandTotal()))
	}

	return model.Dashboard{
		Users:    len(users),
		Products: len(products),
		Orders:   len(orders),
		Revenue:  revenue.Round(2).InexactFloat64(),
	}, nil
}

// Users возвращает всех пользователей.
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	return s.users.All(ctx)
}

// UserInput: данные пользователя из административной формы. При
// обновлении незаданные поля и пустой пароль оставляют прежние значения.
type UserInput struct {
	Name     *string    `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// CreateUser создаёт пользователя. Пароль обязателен.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (model.User, error) {
	u := model.User{
		Name:  strings.TrimSpace(deref(in.Name)),
		Email: strings.TrimSpace(in.Email),
		Role:  in.Role,
	}
	if err := validation.ValidateUser(u); err != nil {
		return model.User{}, invalid(err)
	}
	if in.Password == "" {
		return model.User{}, session.ErrPasswordRequired
	}
	if _, err := s.users.FindBy(ctx, u.Email); err == nil {
		return model.User{}, session.ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}
	u.Password = hashed
	return emailTaken(s.users.Add(ctx, u))
}

// UpdateUser обновляет имя, email, роль и, если задан, пароль пользователя.
func (s *Service) UpdateUser(ctx context.Context, id string, in UserInput) (model.User, error) {
	current, err := s.users.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	candidate := current
	if in.Name != nil {
		candidate.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != "" {
		candidate.Email = strings.TrimSpace(in.Email)
	}
	if in.Role != "" {
		candidate.Role = in.Role
	}
	if err := validation.ValidateUser(candidate); err != nil {
		return model.User{}, invalid(err)
	}

	fields := recordstore.Fields{
		"name":  candidate.Name,
		"email": candidate.Email,
		"role":  candidate.Role,
	}
	if in.Password != "" {
		hashed, err := s.hasher.Hash(in.Password)
		if err != nil {
			return model.User{}, err
		}
		fields["password"] = hashed
	}
	return emailTaken(s.users.Update(ctx, id, fields))
}

// DeleteUser удаляет пользователя. Заказы пользователя не затрагиваются.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return deleted(s.users.Delete(ctx, id))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func emailTaken(u model.User, err error) (model.User, error) {
	if errors.Is(err, recordstore.ErrDuplicateKey) {
		return model.User{}, session.ErrEmailTaken
	}
	return u, err
}
