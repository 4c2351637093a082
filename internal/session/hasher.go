package session

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher хеширует и проверяет пароли пользователей.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// PlainHasher хранит пароли открытым текстом. Совместим с данными,
// созданными исходной витриной; небезопасен.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlainHasher) Verify(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// BcryptHasher хранит bcrypt-хеши паролей. Записи, сохранённые открытым
// текстом, по-прежнему проходят проверку.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Verify(stored, password string) bool {
	if !isBcrypt(stored) {
		return PlainHasher{}.Verify(stored, password)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// NewHasher возвращает хешер по имени режима: plain или bcrypt (по умолчанию).
func NewHasher(mode string) Hasher {
	if strings.EqualFold(mode, "plain") {
		return PlainHasher{}
	}
	return BcryptHasher{}
}
