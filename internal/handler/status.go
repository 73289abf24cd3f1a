package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mkasimov/shop-system/internal/apperr"
)

type statusRequest struct {
	Name string `json:"name"`
}

// CreateStatus добавляет статус в словарь.
func (h *Handler) CreateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	s, err := h.service.CreateStatus(r.Context(), actor, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toStatusResponse(s))
}

// GetStatus возвращает статус по идентификатору.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
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

	s, err := h.service.GetStatus(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toStatusResponse(s))
}

// ListStatuses возвращает весь словарь статусов.
func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	statuses, err := h.service.ListStatuses(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]statusResponse, 0, len(statuses))
	for i := range statuses {
		resp = append(resp, toStatusResponse(&statuses[i]))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus переименовывает статус.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	s, err := h.service.UpdateStatus(r.Context(), actor, id, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toStatusResponse(s))
}

// DeleteStatus удаляет статус из словаря.
func (h *Handler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteStatus(r.Context(), actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "status deleted"})
}
