package handler

import (
	"net/http"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/service"
)

// userResponse: пользователь без пароля.
type userResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Email     string          `json:"email"`
	Role      model.Role      `json:"role"`
	CreatedAt model.Timestamp `json:"createdAt,omitzero"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register регистрирует покупателя и выполняет вход в текущем профиле.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "register user", err)
		return
	}

	u, err := h.service.Register(r.Context(), profileID(r), model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, r, "register user", err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(u))
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет вход пользователя в текущем профиле.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "login user", err)
		return
	}
	if req.Email == "" {
		h.fail(w, r, "login user", service.ErrInvalidInput)
		return
	}

	u, err := h.service.Login(r.Context(), profileID(r), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login user", err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(u))
}

// Logout выполняет выход из текущего профиля.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), profileID(r)); err != nil {
		h.fail(w, r, "logout user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me возвращает текущего пользователя профиля.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.CurrentUser(r.Context(), profileID(r))
	if err != nil {
		h.fail(w, r, "current user", err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}
