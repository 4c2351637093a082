package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/session"
	"github.com/mmeshcher/luxedropship/internal/validation"
)

// Register регистрирует покупателя и выполняет вход в профиле.
func (s *Service) Register(ctx context.Context, profileID string, u model.User) (model.User, error) {
	if !validation.IsValidEmail(u.Email) {
		return model.User{}, invalid(&validation.FieldError{Field: "email", Reason: "invalid email"})
	}
	created, err := s.Session(profileID).Register(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", created.ID))
	return created, nil
}

// Login выполняет вход пользователя в профиле.
func (s *Service) Login(ctx context.Context, profileID, email, password string) (model.User, error) {
	return s.Session(profileID).Login(ctx, email, password)
}

// Logout выполняет выход пользователя из профиля.
func (s *Service) Logout(ctx context.Context, profileID string) error {
	return s.Session(profileID).Logout(ctx)
}

// CurrentUser возвращает текущего пользователя профиля.
func (s *Service) CurrentUser(ctx context.Context, profileID string) (model.User, error) {
	return s.Session(profileID).CurrentUser(ctx)
}

// currentUserID возвращает идентификатор текущего пользователя или пустую
// строку для гостя.
func (s *Service) currentUserID(ctx context.Context, profileID string) (string, error) {
	u, err := s.CurrentUser(ctx, profileID)
	if errors.Is(err, session.ErrNotLoggedIn) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
