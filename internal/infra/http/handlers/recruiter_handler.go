package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

const maxImportSize = 10 << 20

type RecruiterHandler struct {
	UC          *usecase.RecruiterUseCase
	Assignments *usecase.AssignmentUseCase
	Logger      *zap.Logger
}

func NewRecruiterHandler(uc *usecase.RecruiterUseCase, assignments *usecase.AssignmentUseCase, logger *zap.Logger) *RecruiterHandler {
	return &RecruiterHandler{UC: uc, Assignments: assignments, Logger: logger}
}

type bulkStatusRequest struct {
	IDs    []string               `json:"ids"`
	Status entity.RecruiterStatus `json:"status"`
}

func (h *RecruiterHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Get("/uncontacted", h.Uncontacted)
	r.Delete("/bulk", h.BulkDelete)
	r.Put("/bulk/status", h.BulkStatus)
	r.Post("/import/csv", h.ImportCSV)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/mark-contacted", h.MarkContacted)
}

func (h *RecruiterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.RecruiterFilter{
		Status:  entity.RecruiterStatus(q.Get("status")),
		Search:  q.Get("search"),
		Company: q.Get("company"),
	}
	page, err := h.UC.List(r.Context(), middleware.OwnerID(r.Context()), filter, pageRequest(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create stores the recruiter and, with ?templateId, assigns it right away.
func (h *RecruiterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecruiterInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ownerID := middleware.OwnerID(r.Context())
	rec, err := h.UC.Create(r.Context(), ownerID, input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}

	if templateID := r.URL.Query().Get("templateId"); templateID != "" && h.Assignments != nil {
		if _, err := h.Assignments.Assign(r.Context(), ownerID, rec.ID, templateID); err != nil {
			h.Logger.Warn("recruiter created but not assigned",
				zap.String("recruiter_id", rec.ID),
				zap.String("template_id", templateID),
				zap.Error(err),
			)
		}
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecruiterHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.UC.Get(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecruiterHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecruiterInput
	if !decodeJSON(w, r, &input) {
		return
	}
	rec, err := h.UC.Update(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecruiterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.UC.Delete(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecruiterHandler) MarkContacted(w http.ResponseWriter, r *http.Request) {
	rec, err := h.UC.MarkAsContacted(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// BulkDelete takes a bare JSON array of recruiter ids.
func (h *RecruiterHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if !decodeJSON(w, r, &ids) {
		return
	}
	n, err := h.UC.BulkDelete(r.Context(), middleware.OwnerID(r.Context()), ids)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *RecruiterHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.UC.BulkUpdateStatus(r.Context(), middleware.OwnerID(r.Context()), req.IDs, req.Status)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RecruiterHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.UC.Stats(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *RecruiterHandler) Uncontacted(w http.ResponseWriter, r *http.Request) {
	list, err := h.UC.ListUncontacted(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ImportCSV reads the multipart "file" part; ?templateId assigns the imported rows.
func (h *RecruiterHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "expected a multipart upload: "+err.Error())
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "file is required")
		return
	}
	defer file.Close()

	templateID := r.URL.Query().Get("templateId")
	if templateID == "" {
		templateID = r.FormValue("templateId")
	}

	out, err := h.UC.ImportCSV(r.Context(), middleware.OwnerID(r.Context()), file, templateID)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
