// Package session хранит состояние профиля браузера: текущего пользователя
// и корзину. Состояние сохраняется в хранилище с префиксом профиля.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/storage"
)

const keyCurrentUser = "currentUserId"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrEmailTaken       = errors.New("email already registered")
	ErrPasswordRequired = errors.New("password required")
	ErrNotLoggedIn      = errors.New("not logged in")
)

// UserStore описывает операции с пользователями, нужные сессии.
type UserStore interface {
	Add(ctx context.Context, u model.User) (model.User, error)
	Get(ctx context.Context, id string) (model.User, error)
	FindBy(ctx context.Context, email string) (model.User, error)
}

// Session: состояние входа одного профиля браузера.
type Session struct {
	kv     storage.KV
	users  UserStore
	hasher Hasher
}

// New создаёт сессию поверх хранилища профиля.
func New(kv storage.KV, users UserStore, hasher Hasher) *Session {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Session{kv: kv, users: users, hasher: hasher}
}

// Login проверяет email и пароль и делает пользователя текущим.
func (s *Session) Login(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.FindBy(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}

	if !s.hasher.Verify(u.Password, password) {
		return model.User{}, ErrInvalidPassword
	}

	if err := s.kv.Set(ctx, keyCurrentUser, u.ID); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	return u, nil
}

// Register создаёт покупателя и сразу выполняет вход. Занятость email
// окончательно проверяется при добавлении записи.
func (s *Session) Register(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Password == "" {
		return model.User{}, ErrPasswordRequired
	}

	_, err := s.users.FindBy(ctx, u.Email)
	if err == nil {
		return model.User{}, ErrEmailTaken
	}
	if !errors.Is(err, recordstore.ErrNotFound) {
		return model.User{}, err
	}

	hashed, err := s.hasher.Hash(u.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u.ID = ""
	u.Password = hashed
	u.Role = model.RoleCustomer

	created, err := s.users.Add(ctx, u)
	if errors.Is(err, recordstore.ErrDuplicateKey) {
		return model.User{}, ErrEmailTaken
	}
	if err != nil {
		return model.User{}, err
	}

	if err := s.kv.Set(ctx, keyCurrentUser, created.ID); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	return created, nil
}

// Logout сбрасывает текущего пользователя.
func (s *Session) Logout(ctx context.Context) error {
	return s.kv.Remove(ctx, keyCurrentUser)
}

// CurrentUser читает текущего пользователя по сохранённому идентификатору.
// Если идентификатор отсутствует или пользователь удалён, возвращается ErrNotLoggedIn.
func (s *Session) CurrentUser(ctx context.Context) (model.User, error) {
	id, ok, err := s.kv.Get(ctx, keyCurrentUser)
	if err != nil {
		return model.User{}, err
	}
	if !ok || id == "" {
		return model.User{}, ErrNotLoggedIn
	}

	u, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return model.User{}, ErrNotLoggedIn
		}
		return model.User{}, err
	}
	return u, nil
}

func (s *Session) IsLoggedIn(ctx context.Context) (bool, error) {
	_, err := s.CurrentUser(ctx)
	if errors.Is(err, ErrNotLoggedIn) {
		return false, nil
	}
	return err == nil, err
}

// IsAdmin перечитывает текущего пользователя при каждом вызове.
func (s *Session) IsAdmin(ctx context.Context) (bool, error) {
	u, err := s.CurrentUser(ctx)
	if errors.Is(err, ErrNotLoggedIn) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == model.RoleAdmin, nil
}
