package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/productfetch"
	"github.com/mmeshcher/luxedropship/internal/validation"
)

// defaultImportStock: остаток, назначаемый импортированному товару.
const defaultImportStock = 50

// ImportRequest описывает импорт товара по ссылке маркетплейса. Ненулевые
// поля переопределяют данные, полученные от сервиса.
type ImportRequest struct {
	URL      string   `json:"url"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
	Stock    *int     `json:"stock"`
}

// PreviewImport получает и нормализует данные товара без сохранения.
func (s *Service) PreviewImport(ctx context.Context, productURL string) (productfetch.Product, error) {
	productURL = strings.TrimSpace(productURL)
	if !productfetch.ValidProductURL(productURL) {
		return productfetch.Product{}, invalid(errors.New("unsupported product url"))
	}
	if _, ok := productfetch.ExtractProductID(productURL); !ok {
		return productfetch.Product{}, invalid(errors.New("product url has no product id"))
	}
	if s.fetcher == nil {
		return productfetch.Product{}, unavailable("fetch product", productfetch.ErrNotConfigured)
	}

	p, err := s.fetcher.FetchByURL(ctx, productURL)
	if err != nil {
		return productfetch.Product{}, unavailable("fetch product", err)
	}
	return p, nil
}

// SearchImport ищет товары маркетплейса для импорта.
func (s *Service) SearchImport(ctx context.Context, query string) ([]productfetch.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid(&validation.FieldError{Field: "q", Reason: "required"})
	}
	if s.fetcher == nil {
		return nil, unavailable("search products", productfetch.ErrNotConfigured)
	}

	found, err := s.fetcher.Search(ctx, query)
	if err != nil {
		return nil, unavailable("search products", err)
	}
	return found, nil
}

// ImportProduct получает товар по ссылке, добавляет его в каталог и
// записывает в историю импорта.
func (s *Service) ImportProduct(ctx context.Context, req ImportRequest) (model.Product, error) {
	fetched, err := s.PreviewImport(ctx, req.URL)
	if err != nil {
		return model.Product{}, err
	}

	p := productFromFetched(fetched)
	p.Category = req.Category
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}

	created, err := s.CreateProduct(ctx, p)
	if err != nil {
		return model.Product{}, err
	}

	_, err = s.imports.RecordImport(ctx, model.ImportRecord{
		ID:            created.ID,
		NameEn:        created.NameEn,
		NameVi:        created.Name,
		Price:         created.Price,
		OriginalPrice: created.OriginalPrice,
		Stock:         created.Stock,
		Category:      created.Category,
		Image:         created.Image,
		SourceURL:     strings.TrimSpace(req.URL),
	})
	if err != nil {
		s.logger.Warn("record import history", zap.String("product_id", created.ID), zap.Error(err))
	}

	s.logger.Info("product imported", zap.String("product_id", created.ID), zap.String("url", req.URL))
	return created, nil
}

func productFromFetched(f productfetch.Product) model.Product {
	p := model.Product{
		NameEn:        f.Title,
		Name:          f.TitleVi,
		Price:         f.SalePrice,
		OriginalPrice: f.OriginalPrice,
		Stock:         defaultImportStock,
		DescriptionEn: f.Description,
		Description:   f.DescriptionVi,
		Keywords:      f.Keywords,
		Tags:          model.SplitList(f.Tags),
		Rating:        f.Rating,
		Reviews:       f.Reviews,
	}
	if len(f.Images) > 0 {
		p.Image = f.Images[0]
		if len(f.Images) > 1 {
			p.GalleryImages = append(model.StringList(nil), f.Images[1:]...)
		}
	}
	return p
}

// SaveImportDraft сохраняет черновик импорта.
func (s *Service) SaveImportDraft(ctx context.Context, rec model.ImportRecord) (model.ImportRecord, error) {
	return s.imports.SaveDraft(ctx, rec)
}

// ImportDraft возвращает черновик по отметке времени.
func (s *Service) ImportDraft(ctx context.Context, timestamp string) (model.ImportRecord, error) {
	return s.imports.Draft(ctx, timestamp)
}

// ImportHistory возвращает импортированные товары и черновики, новые первыми.
func (s *Service) ImportHistory(ctx context.Context) ([]model.ImportRecord, error) {
	return s.imports.History(ctx)
}

// DeleteImport удаляет запись истории или черновик по отметке времени.
func (s *Service) DeleteImport(ctx context.Context, timestamp string) error {
	return deleted(s.imports.Delete(ctx, timestamp))
}
