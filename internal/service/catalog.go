package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/validation"
)

// Products возвращает товары каталога. Пустая категория означает все товары.
func (s *Service) Products(ctx context.Context, category string) ([]model.Product, error) {
	all, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return all, nil
	}

	out := make([]model.Product, 0, len(all))
	for _, p := range all {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Product возвращает товар по идентификатору.
func (s *Service) Product(ctx context.Context, id string) (model.Product, error) {
	return s.products.Get(ctx, id)
}

// CreateProduct добавляет товар в каталог. Пустой артикул генерируется.
func (s *Service) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if err := validation.ValidateProduct(p); err != nil {
		return model.Product{}, invalid(err)
	}
	p.ID = ""
	p.CouponCode = strings.ToUpper(strings.TrimSpace(p.CouponCode))
	if p.SKU == "" {
		p.SKU = s.generateSKU()
	}
	return s.products.Add(ctx, p)
}

// UpdateProduct частично обновляет товар. Списки заменяются целиком.
func (s *Service) UpdateProduct(ctx context.Context, id string, fields recordstore.Fields) (model.Product, error) {
	current, err := s.products.Get(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if code, ok := fields["couponCode"].(string); ok {
		fields["couponCode"] = strings.ToUpper(strings.TrimSpace(code))
	}

	merged, err := mergeFields(current, fields)
	if err != nil {
		return model.Product{}, invalid(err)
	}
	if err := validation.ValidateProduct(merged); err != nil {
		return model.Product{}, invalid(err)
	}
	return s.products.Update(ctx, id, fields)
}

// listFields: поля-списки товара, допускающие добавление значений.
var listFields = map[string]bool{
	"galleryImages": true,
	"colors":        true,
	"sizes":         true,
	"tags":          true,
}

// AppendProductValues добавляет значения в конец поля-списка товара.
func (s *Service) AppendProductValues(ctx context.Context, id, field string, values []string) (model.Product, error) {
	if !listFields[field] {
		return model.Product{}, invalid(&validation.FieldError{Field: field, Reason: "not an appendable list"})
	}

	add := make([]any, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			add = append(add, v)
		}
	}
	if len(add) == 0 {
		return model.Product{}, invalid(&validation.FieldError{Field: "values", Reason: "required"})
	}

	p, err := s.products.Append(ctx, id, field, add...)
	if errors.Is(err, recordstore.ErrNotList) {
		return model.Product{}, invalid(err)
	}
	return p, err
}

// DeleteProduct удаляет товар. Отсутствующий товар даёт recordstore.ErrNotFound.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return deleted(s.products.Delete(ctx, id))
}

// generateSKU формирует артикул вида SKU-<время base36><5 случайных символов>.
func (s *Service) generateSKU() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, 5)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return "SKU-" + strings.ToUpper(strconv.FormatInt(s.now().UnixMilli(), 36)) + string(b)
}

// mergeFields накладывает частичное обновление на текущее значение сущности
// и возвращает результат для проверки.
func mergeFields[T any](current T, fields recordstore.Fields) (T, error) {
	rec, err := recordstore.Encode(current)
	if err != nil {
		return current, err
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		if err := rec.Set(k, v); err != nil {
			return current, err
		}
	}
	return recordstore.Decode[T](rec)
}

func deleted(removed bool, err error) error {
	if err != nil {
		return err
	}
	if !removed {
		return recordstore.ErrNotFound
	}
	return nil
}
