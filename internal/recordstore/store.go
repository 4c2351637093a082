// Package recordstore реализует хранилище коллекций JSON-записей поверх
// хранилища ключ-значение и обобщённый репозиторий сущностей.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/storage"
)

// Названия коллекций магазина.
const (
	CollectionUsers         = "users"
	CollectionProducts      = "products"
	CollectionOrders        = "orders"
	CollectionOrderLedger   = "orderLedger"
	CollectionCoupons       = "coupons"
	CollectionDrafts        = "drafts"
	CollectionImportHistory = "importHistory"
)

// ErrNotFound возвращается, если запись с указанным идентификатором или ключом не найдена.
var ErrNotFound = errors.New("record not found")

// Record: одна запись коллекции в виде JSON-объекта с сохранением неизвестных полей.
type Record map[string]json.RawMessage

// ID возвращает идентификатор записи или пустую строку.
func (r Record) ID() string {
	return r.String("id")
}

// String возвращает строковое значение поля или пустую строку.
func (r Record) String(field string) string {
	raw, ok := r[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Set записывает значение поля, кодируя его в JSON.
func (r Record) Set(field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode field %s: %w", field, err)
	}
	r[field] = raw
	return nil
}

// Blank сообщает, отсутствует ли поле или содержит null либо пустую строку.
func (r Record) Blank(field string) bool {
	raw, ok := r[field]
	if !ok {
		return true
	}
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`))
}

// Encode переводит значение в запись.
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	rec := Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return rec, nil
}

// Decode переводит запись в типизированное значение.
func Decode[T any](rec Record) (T, error) {
	var v T
	raw, err := json.Marshal(rec)
	if err != nil {
		return v, fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode record: %w", err)
	}
	return v, nil
}

// Store хранит именованные коллекции записей. Коллекция читается и
// записывается целиком; повреждённые данные читаются как пустая коллекция.
type Store struct {
	kv     storage.KV
	logger *zap.Logger
	mu     sync.Mutex
}

// New создаёт хранилище записей поверх kv.
func New(kv storage.KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger}
}

// Read возвращает записи коллекции в порядке хранения.
func (s *Store) Read(ctx context.Context, collection string) ([]Record, error) {
	raw, ok, err := s.kv.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	if !ok {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warn("corrupt collection treated as empty",
			zap.String("collection", collection), zap.Error(err))
		return []Record{}, nil
	}

	out := records[:0]
	for _, rec := range records {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Write полностью заменяет содержимое коллекции.
func (s *Store) Write(ctx context.Context, collection string, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, collection, records)
}

// EnsureDefault записывает seed, только если коллекция ещё не существует.
// Возвращает true, если данные были записаны.
func (s *Store) EnsureDefault(ctx context.Context, collection string, seed []Record) (bool, error) {
	return s.EnsureDefaultFunc(ctx, collection, func() ([]Record, error) { return seed, nil })
}

// EnsureDefaultFunc работает как EnsureDefault, но строит начальные данные
// вызовом build только для отсутствующей коллекции.
func (s *Store) EnsureDefaultFunc(ctx context.Context, collection string, build func() ([]Record, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.kv.Get(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("check collection %s: %w", collection, err)
	}
	if ok {
		return false, nil
	}

	seed, err := build()
	if err != nil {
		return false, fmt.Errorf("build seed for %s: %w", collection, err)
	}
	if err := s.write(ctx, collection, seed); err != nil {
		return false, err
	}
	return true, nil
}

// Modify читает коллекцию, передаёт её fn и записывает результат.
// Если fn возвращает ошибку, коллекция не изменяется. Вызовы Modify
// сериализуются в пределах процесса.
func (s *Store) Modify(ctx context.Context, collection string, fn func([]Record) ([]Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Read(ctx, collection)
	if err != nil {
		return err
	}

	updated, err := fn(records)
	if err != nil {
		return err
	}

	return s.write(ctx, collection, updated)
}

func (s *Store) write(ctx context.Context, collection string, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}

	if err := s.kv.Set(ctx, collection, string(raw)); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	return nil
}
