package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/guard"
	"github.com/mkasimov/shop-system/internal/model"
)

// Допустимые ключи сортировки каталога. Неизвестный ключ — ошибка
// валидации, а не молчаливый откат к значению по умолчанию.
var productSortKeys = map[string]bool{
	"name":       true,
	"price":      true,
	"stock":      true,
	"created_at": true,
	"updated_at": true,
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CreateProduct добавляет товар в каталог. Только для администратора.
func (s *Service) CreateProduct(ctx context.Context, actor *model.User, p *model.Product) (*model.Product, error) {
	if err := guard.Admin(actor); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, apperr.New(apperr.Validation, "product name must not be empty")
	}
	if p.Price.IsNegative() {
		return nil, apperr.New(apperr.Validation, "price must not be negative")
	}
	if p.Stock < 0 {
		return nil, apperr.New(apperr.Validation, "stock must not be negative")
	}

	p.ID = uuid.New()
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Product, error) {
	if err := guard.Active(actor); err != nil {
		return nil, err
	}
	return s.repo.GetProductByID(ctx, id)
}

// UpdateProduct частично обновляет товар. Только для администратора.
func (s *Service) UpdateProduct(ctx context.Context, actor *model.User, id uuid.UUID, upd model.ProductUpdate) (*model.Product, error) {
	if err := guard.Admin(actor); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, apperr.New(apperr.Validation, "product name must not be empty")
		}
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return nil, apperr.New(apperr.Validation, "price must not be negative")
		}
		p.Price = *upd.Price
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return nil, apperr.New(apperr.Validation, "stock must not be negative")
		}
		p.Stock = *upd.Stock
	}
	if upd.IsAvailable != nil {
		p.IsAvailable = *upd.IsAvailable
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct удаляет товар из каталога. Только для администратора.
// Исторические позиции заказов хранят зафиксированную цену и блокируют
// удаление товара, на который ссылаются.
func (s *Service) DeleteProduct(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := guard.Admin(actor); err != nil {
		return err
	}
	return s.repo.DeleteProduct(ctx, id)
}

// SearchProducts выполняет поиск по каталогу. Фильтры объединяются по И;
// страницы нумеруются с единицы.
func (s *Service) SearchProducts(ctx context.Context, actor *model.User, params model.ProductSearchParams) (*model.ProductPage, error) {
	if err := guard.Active(actor); err != nil {
		return nil, err
	}

	if params.Page == 0 {
		params.Page = 1
	}
	if params.Page < 1 {
		return nil, apperr.New(apperr.Validation, "page must be at least 1")
	}
	if params.PageSize == 0 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return nil, apperr.Newf(apperr.Validation, "page_size must be between 1 and %d", maxPageSize)
	}

	if params.SortBy == "" {
		params.SortBy = "name"
	}
	if !productSortKeys[params.SortBy] {
		return nil, apperr.Newf(apperr.Validation, "unknown sort key %q", params.SortBy)
	}
	switch params.SortOrder {
	case "":
		params.SortOrder = "asc"
	case "asc", "desc":
	default:
		return nil, apperr.Newf(apperr.Validation, "sort order must be asc or desc, got %q", params.SortOrder)
	}

	if params.MinPrice != nil && params.MinPrice.IsNegative() {
		return nil, apperr.New(apperr.Validation, "min_price must not be negative")
	}
	if params.MaxPrice != nil && params.MaxPrice.IsNegative() {
		return nil, apperr.New(apperr.Validation, "max_price must not be negative")
	}

	return s.repo.SearchProducts(ctx, params)
}
