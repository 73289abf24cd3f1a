package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/model"
)

type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	IsAvailable *bool  `json:"is_available"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Newf(apperr.Validation, "invalid price value %q", raw)
	}
	return d, nil
}

// CreateProduct добавляет товар в каталог.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	p, err := h.service.CreateProduct(r.Context(), actor, &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		IsAvailable: available,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// GetProduct возвращает товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.service.GetProduct(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(p))
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Stock       *int    `json:"stock"`
	IsAvailable *bool   `json:"is_available"`
}

// UpdateProduct частично обновляет товар.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	upd := model.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		IsAvailable: req.IsAvailable,
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		upd.Price = &price
	}

	p, err := h.service.UpdateProduct(r.Context(), actor, id, upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(p))
}

// DeleteProduct удаляет товар из каталога.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

type productPageResponse struct {
	Products      []productResponse `json:"products"`
	TotalProducts int               `json:"total_products"`
	TotalPages    int               `json:"total_pages"`
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
}

// parseSearchParams разбирает параметры поиска из строки запроса.
// Некорректные значения — ошибка валидации, а не молчаливый откат
// к значениям по умолчанию.
func parseSearchParams(r *http.Request) (model.ProductSearchParams, error) {
	q := r.URL.Query()
	params := model.ProductSearchParams{
		Name:      q.Get("name"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	if raw := q.Get("min_price"); raw != "" {
		d, err := parsePrice(raw)
		if err != nil {
			return params, err
		}
		params.MinPrice = &d
	}
	if raw := q.Get("max_price"); raw != "" {
		d, err := parsePrice(raw)
		if err != nil {
			return params, err
		}
		params.MaxPrice = &d
	}
	if raw := q.Get("is_available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return params, apperr.Newf(apperr.Validation, "invalid is_available value %q", raw)
		}
		params.IsAvailable = &v
	}
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperr.Newf(apperr.Validation, "invalid page value %q", raw)
		}
		params.Page = v
	}
	if raw := q.Get("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperr.Newf(apperr.Validation, "invalid page_size value %q", raw)
		}
		params.PageSize = v
	}

	return params, nil
}

// SearchProducts выполняет поиск по каталогу. Без параметров возвращает
// первую страницу всего каталога.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	params, err := parseSearchParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.service.SearchProducts(r.Context(), actor, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := productPageResponse{
		Products:      make([]productResponse, 0, len(page.Products)),
		TotalProducts: page.TotalProducts,
		TotalPages:    page.TotalPages,
		Page:          page.Page,
		PageSize:      page.PageSize,
	}
	for i := range page.Products {
		resp.Products = append(resp.Products, toProductResponse(&page.Products[i]))
	}
	h.writeJSON(w, http.StatusOK, resp)
}
