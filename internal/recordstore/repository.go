package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotList возвращается, если поле, к которому добавляются значения, не является списком.
	ErrNotList = errors.New("field is not a list")
	// ErrDuplicateID возвращается при вставке записи с уже занятым идентификатором.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrDuplicateKey возвращается, если уникальный вторичный ключ уже занят другой записью.
	ErrDuplicateKey = errors.New("duplicate record key")
)

// Fields содержит поля для частичного обновления записи. Обновление
// поверхностное: значение-список заменяет сохранённый список целиком.
type Fields map[string]any

// Options настраивает репозиторий сущности.
type Options struct {
	// Collection: имя коллекции в хранилище.
	Collection string
	// IDPrefix добавляется к сгенерированным идентификаторам.
	IDPrefix string
	// KeyField: JSON-поле вторичного ключа (email, code); пусто, если ключа нет.
	KeyField string
	// NormalizeKey приводит значения вторичного ключа к сравнимому виду.
	NormalizeKey func(string) string
	// UniqueKey запрещает двум записям иметь одинаковый вторичный ключ.
	// Проверка выполняется внутри Modify вместе с записью.
	UniqueKey bool
	// Defaults подставляются при добавлении вместо отсутствующих или пустых полей.
	Defaults map[string]any
	// TimeField: поле отметки времени создания; по умолчанию createdAt.
	TimeField string
	// Now: источник текущего времени; по умолчанию time.Now.
	Now func() time.Time
}

// Repository реализует типизированные CRUD-операции над одной коллекцией.
type Repository[T any] struct {
	store *Store
	opts  Options
}

// NewRepository создаёт репозиторий сущности T.
func NewRepository[T any](store *Store, opts Options) *Repository[T] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TimeField == "" {
		opts.TimeField = "createdAt"
	}
	if opts.NormalizeKey == nil {
		opts.NormalizeKey = func(s string) string { return s }
	}
	return &Repository[T]{store: store, opts: opts}
}

// Collection возвращает имя коллекции репозитория.
func (r *Repository[T]) Collection() string {
	return r.opts.Collection
}

// NewID генерирует идентификатор вида <prefix>_<uuidv7>. UUIDv7 сочетает
// отметку времени со случайной частью.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	if prefix == "" {
		return id.String()
	}
	return prefix + "_" + id.String()
}

// Add присваивает записи новый идентификатор и время создания, подставляет
// значения по умолчанию и сохраняет её в конец коллекции.
func (r *Repository[T]) Add(ctx context.Context, item T) (T, error) {
	var out T

	rec, err := Encode(item)
	if err != nil {
		return out, err
	}

	err = r.store.Modify(ctx, r.opts.Collection, func(records []Record) ([]Record, error) {
		if err := rec.Set("id", r.uniqueID(records)); err != nil {
			return nil, err
		}
		if err := rec.Set(r.opts.TimeField, r.opts.Now().UnixMilli()); err != nil {
			return nil, err
		}
		if err := r.applyDefaults(rec); err != nil {
			return nil, err
		}
		if err := r.checkKey(records, rec); err != nil {
			return nil, err
		}

		out, err = Decode[T](rec)
		if err != nil {
			return nil, err
		}
		return append(records, rec), nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("add to %s: %w", r.opts.Collection, err)
	}

	return out, nil
}

// Insert сохраняет запись с её собственным идентификатором и временем
// создания; пустые значения заполняются так же, как в Add.
func (r *Repository[T]) Insert(ctx context.Context, item T) (T, error) {
	var out T

	rec, err := Encode(item)
	if err != nil {
		return out, err
	}

	err = r.store.Modify(ctx, r.opts.Collection, func(records []Record) ([]Record, error) {
		if rec.Blank("id") {
			if err := rec.Set("id", r.uniqueID(records)); err != nil {
				return nil, err
			}
		} else {
			for _, existing := range records {
				if existing.ID() == rec.ID() {
					return nil, fmt.Errorf("%s: %w", rec.ID(), ErrDuplicateID)
				}
			}
		}
		if rec.Blank(r.opts.TimeField) {
			if err := rec.Set(r.opts.TimeField, r.opts.Now().UnixMilli()); err != nil {
				return nil, err
			}
		}
		if err := r.applyDefaults(rec); err != nil {
			return nil, err
		}
		if err := r.checkKey(records, rec); err != nil {
			return nil, err
		}

		v, err := Decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = v
		return append(records, rec), nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("insert into %s: %w", r.opts.Collection, err)
	}

	return out, nil
}

// All возвращает все записи коллекции в порядке добавления. Записи,
// которые не удаётся разобрать, пропускаются.
func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	records, err := r.store.Read(ctx, r.opts.Collection)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		v, err := Decode[T](rec)
		if err != nil {
			r.store.logger.Sugar().Warnw("skip undecodable record",
				"collection", r.opts.Collection, "id", rec.ID(), "error", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Get возвращает запись по идентификатору или ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	return r.first(ctx, func(rec Record) bool { return rec.ID() == id })
}

// FindBy возвращает первую запись с указанным значением вторичного ключа или ErrNotFound.
func (r *Repository[T]) FindBy(ctx context.Context, value string) (T, error) {
	if r.opts.KeyField == "" {
		var zero T
		return zero, fmt.Errorf("%s has no secondary key: %w", r.opts.Collection, ErrNotFound)
	}

	want := r.opts.NormalizeKey(value)
	return r.first(ctx, func(rec Record) bool {
		return r.opts.NormalizeKey(rec.String(r.opts.KeyField)) == want
	})
}

func (r *Repository[T]) first(ctx context.Context, match func(Record) bool) (T, error) {
	var zero T

	records, err := r.store.Read(ctx, r.opts.Collection)
	if err != nil {
		return zero, err
	}

	for _, rec := range records {
		if match(rec) {
			return Decode[T](rec)
		}
	}
	return zero, ErrNotFound
}

// Update поверхностно объединяет fields с сохранённой записью. Поля, не
// указанные в fields, сохраняются; идентификатор не изменяется.
func (r *Repository[T]) Update(ctx context.Context, id string, fields Fields) (T, error) {
	return r.modifyOne(ctx, id, func(rec Record) error {
		for k, v := range fields {
			if k == "id" {
				continue
			}
			if err := rec.Set(k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Append добавляет значения в конец поля-списка записи. Отсутствующее поле
// считается пустым списком.
func (r *Repository[T]) Append(ctx context.Context, id, field string, values ...any) (T, error) {
	return r.modifyOne(ctx, id, func(rec Record) error {
		var list []json.RawMessage
		if !rec.Blank(field) {
			if err := json.Unmarshal(rec[field], &list); err != nil {
				return fmt.Errorf("%s: %w", field, ErrNotList)
			}
		}
		for _, v := range values {
			raw, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode %s value: %w", field, err)
			}
			list = append(list, raw)
		}
		return rec.Set(field, list)
	})
}

func (r *Repository[T]) modifyOne(ctx context.Context, id string, fn func(Record) error) (T, error) {
	var out T

	err := r.store.Modify(ctx, r.opts.Collection, func(records []Record) ([]Record, error) {
		for _, rec := range records {
			if rec.ID() != id {
				continue
			}
			if err := fn(rec); err != nil {
				return nil, err
			}
			if err := r.checkKey(records, rec); err != nil {
				return nil, err
			}
			v, err := Decode[T](rec)
			if err != nil {
				return nil, err
			}
			out = v
			return records, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete удаляет запись по идентификатору. Удаление отсутствующей записи
// не является ошибкой и возвращает false.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	removed := false

	err := r.store.Modify(ctx, r.opts.Collection, func(records []Record) ([]Record, error) {
		kept := make([]Record, 0, len(records))
		for _, rec := range records {
			if rec.ID() == id {
				removed = true
				continue
			}
			kept = append(kept, rec)
		}
		if !removed {
			return nil, ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureDefault заполняет коллекцию начальными данными, если она ещё не
// существует. Пустые идентификаторы и время создания заполняются.
func (r *Repository[T]) EnsureDefault(ctx context.Context, seed []T) (bool, error) {
	return r.EnsureDefaultFunc(ctx, func() ([]T, error) { return seed, nil })
}

// EnsureDefaultFunc вызывает build только для отсутствующей коллекции.
func (r *Repository[T]) EnsureDefaultFunc(ctx context.Context, build func() ([]T, error)) (bool, error) {
	return r.store.EnsureDefaultFunc(ctx, r.opts.Collection, func() ([]Record, error) {
		seed, err := build()
		if err != nil {
			return nil, err
		}
		return r.seedRecords(seed)
	})
}

func (r *Repository[T]) seedRecords(seed []T) ([]Record, error) {
	records := make([]Record, 0, len(seed))
	now := r.opts.Now().UnixMilli()

	for _, item := range seed {
		rec, err := Encode(item)
		if err != nil {
			return nil, err
		}
		if rec.Blank("id") {
			if err := rec.Set("id", r.uniqueID(records)); err != nil {
				return nil, err
			}
		}
		if rec.Blank(r.opts.TimeField) {
			if err := rec.Set(r.opts.TimeField, now); err != nil {
				return nil, err
			}
		}
		if err := r.applyDefaults(rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Repository[T]) applyDefaults(rec Record) error {
	for field, v := range r.opts.Defaults {
		if rec.Blank(field) {
			if err := rec.Set(field, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Repository[T]) checkKey(records []Record, rec Record) error {
	if !r.opts.UniqueKey || r.opts.KeyField == "" {
		return nil
	}

	key := r.opts.NormalizeKey(rec.String(r.opts.KeyField))
	if key == "" {
		return nil
	}
	for _, existing := range records {
		if existing.ID() == rec.ID() {
			continue
		}
		if r.opts.NormalizeKey(existing.String(r.opts.KeyField)) == key {
			return fmt.Errorf("%s %q: %w", r.opts.KeyField, key, ErrDuplicateKey)
		}
	}
	return nil
}

func (r *Repository[T]) uniqueID(records []Record) string {
	taken := make(map[string]struct{}, len(records))
	for _, rec := range records {
		taken[rec.ID()] = struct{}{}
	}

	for {
		id := NewID(r.opts.IDPrefix)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

// UpperKey приводит ключ к верхнему регистру без пробелов по краям.
func UpperKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// LowerKey приводит ключ к нижнему регистру без пробелов по краям.
func LowerKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
