// Package storage содержит текстовые хранилища ключ-значение, на которых
// строится хранилище записей магазина.
package storage

import (
	"context"
	"errors"
)

// ErrClosed возвращается при обращении к закрытому хранилищу.
var ErrClosed = errors.New("storage closed")

// KV описывает персистентное хранилище строк по ключу.
type KV interface {
	// Get возвращает значение ключа и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set полностью заменяет значение ключа.
	Set(ctx context.Context, key, value string) error
	// Remove удаляет ключ. Удаление отсутствующего ключа не считается ошибкой.
	Remove(ctx context.Context, key string) error
}

type prefixed struct {
	kv     KV
	prefix string
}

// WithPrefix возвращает представление kv, в котором все ключи дополняются префиксом.
// Используется для данных отдельного профиля браузера.
func WithPrefix(kv KV, prefix string) KV {
	return &prefixed{kv: kv, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.kv.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.kv.Remove(ctx, p.prefix+key)
}
