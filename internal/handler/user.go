package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/model"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup обрабатывает регистрацию нового пользователя.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	u, err := h.service.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toUserResponse(u))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login проверяет учётные данные и возвращает bearer-токен.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		h.writeError(w, r, apperr.New(apperr.Validation, "username and password are required"))
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func parseIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.Validation, "invalid id")
	}
	return id, nil
}

// GetUser возвращает данные пользователя.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
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

	u, err := h.service.GetUser(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toUserResponse(u))
}

// ListUsers возвращает всех пользователей.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	users, err := h.service.ListUsers(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UpdateUser обновляет данные собственной учётной записи.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
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

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	u, err := h.service.UpdateUser(r.Context(), actor, id, model.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toUserResponse(u))
}

// DeleteUser удаляет собственную учётную запись.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteUser(r.Context(), actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type changeRoleRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
}

// ChangeRole выставляет пользователю признак администратора.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	if err := h.service.ChangeRole(r.Context(), actor, req.UserID, req.IsAdmin); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "user role updated"})
}

type changeActiveRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	IsActive bool      `json:"is_active"`
}

// ChangeActive активирует или деактивирует учётную запись.
func (h *Handler) ChangeActive(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req changeActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	if err := h.service.ChangeActive(r.Context(), actor, req.UserID, req.IsActive); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "user activity updated"})
}

// ListUserOrders возвращает заказы пользователя.
func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
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

	orders, err := h.service.ListOrdersForUser(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	h.writeJSON(w, http.StatusOK, resp)
}
