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

type InboxHandler struct {
	UC     *usecase.InboxUseCase
	Logger *zap.Logger
}

func NewInboxHandler(uc *usecase.InboxUseCase, logger *zap.Logger) *InboxHandler {
	return &InboxHandler{UC: uc, Logger: logger}
}

type flagRequest struct {
	Value *bool `json:"value"`
}

type categoryRequest struct {
	Category entity.IncomingCategory `json:"category"`
}

func (h *InboxHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Ingest)
	r.Get("/unread-count", h.UnreadCount)
	r.Put("/{id}/read", h.MarkRead)
	r.Put("/{id}/processed", h.MarkProcessed)
	r.Put("/{id}/category", h.Recategorize)
}

func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	category := entity.IncomingCategory(r.URL.Query().Get("category"))
	page, err := h.UC.List(r.Context(), middleware.OwnerID(r.Context()), category, pageRequest(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *InboxHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var input usecase.IngestInput
	if !decodeJSON(w, r, &input) {
		return
	}
	e, err := h.UC.Ingest(r.Context(), middleware.OwnerID(r.Context()), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *InboxHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	category := entity.IncomingCategory(r.URL.Query().Get("category"))
	n, err := h.UC.UnreadCount(r.Context(), middleware.OwnerID(r.Context()), category)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// MarkRead defaults to true when the body is empty.
func (h *InboxHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.UC.MarkRead)
}

func (h *InboxHandler) MarkProcessed(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.UC.MarkProcessed)
}

func (h *InboxHandler) setFlag(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, ownerID, id string, v bool) error) {
	value := true
	if r.ContentLength > 0 {
		var req flagRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Value != nil {
			value = *req.Value
		}
	}
	if err := set(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"), value); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InboxHandler) Recategorize(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.UC.Recategorize(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"), req.Category); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
