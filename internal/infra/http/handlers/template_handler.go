package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

type TemplateHandler struct {
	UC     *usecase.TemplateUseCase
	Logger *zap.Logger
}

func NewTemplateHandler(uc *usecase.TemplateUseCase, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{UC: uc, Logger: logger}
}

func (h *TemplateHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/duplicate", h.Duplicate)
	r.Put("/{id}/archive", h.Archive)
	r.Put("/{id}/activate", h.Activate)
	r.Post("/{id}/use", h.Use)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.TemplateFilter{
		Status:   entity.TemplateStatus(q.Get("status")),
		Category: entity.TemplateCategory(q.Get("category")),
		Search:   q.Get("search"),
	}
	list, err := h.UC.List(r.Context(), middleware.OwnerID(r.Context()), filter)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.TemplateInput
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.UC.Create(r.Context(), middleware.OwnerID(r.Context()), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.UC.Get)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.TemplateInput
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.UC.Update(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.UC.Delete(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	t, err := h.UC.Duplicate(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.UC.Archive)
}

func (h *TemplateHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.UC.Activate)
}

func (h *TemplateHandler) Use(w http.ResponseWriter, r *http.Request) {
	if err := h.UC.Use(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *TemplateHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.UC.Stats(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// respond runs a by-id template operation and writes the template back.
func (h *TemplateHandler) respond(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, ownerID, id string) (*entity.Template, error)) {
	t, err := op(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
