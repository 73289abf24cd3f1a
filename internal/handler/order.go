package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/model"
)

type orderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type createOrderRequest struct {
	Products []orderItemRequest `json:"products"`
}

// CreateOrder создаёт заказ от имени текущего пользователя.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	items := make([]model.OrderItemInput, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, model.OrderItemInput{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}

	o, err := h.service.CreateOrder(r.Context(), actor, items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
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

	o, err := h.service.GetOrder(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(o))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus переводит заказ в указанный статус.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
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

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	o, err := h.service.SetOrderStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// CancelOrder отменяет заказ текущего пользователя.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
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

	if _, err := h.service.CancelOrder(r.Context(), actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
