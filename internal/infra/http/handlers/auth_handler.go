package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

type AuthHandler struct {
	UC     *usecase.AuthUseCase
	Logger *zap.Logger
}

func NewAuthHandler(uc *usecase.AuthUseCase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{UC: uc, Logger: logger}
}

func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out, err := h.UC.Register(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out, err := h.UC.Login(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
