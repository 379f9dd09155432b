package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

type AssignmentHandler struct {
	UC       *usecase.AssignmentUseCase
	BulkSend *usecase.BulkSendUseCase
	Logger   *zap.Logger
}

func NewAssignmentHandler(uc *usecase.AssignmentUseCase, bulk *usecase.BulkSendUseCase, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{UC: uc, BulkSend: bulk, Logger: logger}
}

type assignRequest struct {
	RecruiterID string `json:"recruiterId"`
	TemplateID  string `json:"templateId"`
}

type bulkAssignRequest struct {
	RecruiterIDs []string `json:"recruiterIds"`
	TemplateID   string   `json:"templateId"`
}

type statusRequest struct {
	Status entity.AssignmentStatus `json:"status"`
}

// bulkEmailRequest is the body of both bulk send routes. Subject and body
// override the template text when present.
type bulkEmailRequest struct {
	TemplateID       string     `json:"templateId"`
	RecruiterIDs     []string   `json:"recruiterIds"`
	Subject          string     `json:"subject"`
	Body             string     `json:"body"`
	IsHTML           bool       `json:"isHtml"`
	UseScheduledSend bool       `json:"useScheduledSend"`
	ScheduleTime     *time.Time `json:"scheduleTime"`
}

func (b bulkEmailRequest) scheduleAt() *time.Time {
	if b.UseScheduledSend || b.ScheduleTime != nil {
		return b.ScheduleTime
	}
	return nil
}

func (h *AssignmentHandler) Routes(r chi.Router) {
	r.Post("/assign", h.Assign)
	r.Post("/bulk-assign", h.BulkAssign)
	r.Post("/bulk-send", h.SendBulkToRecruiters)
	r.Delete("/bulk", h.BulkDelete)
	r.Get("/template/{id}", h.ListByTemplate)
	r.Get("/template/{id}/date-range", h.ListByDateRange)
	r.Get("/template/{id}/date-ranges", h.DateRangeSummaries)
	r.Post("/template/{id}/date-range/send-bulk-email", h.SendBulkToDateRange)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/mark-email-sent", h.MarkEmailSent)
	r.Put("/{id}/move-to-followup", h.MoveToFollowup)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.UC.Assign(r.Context(), middleware.OwnerID(r.Context()), req.RecruiterID, req.TemplateID)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AssignmentHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.UC.BulkAssign(r.Context(), middleware.OwnerID(r.Context()), req.RecruiterIDs, req.TemplateID)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.UC.Get(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AssignmentHandler) ListByTemplate(w http.ResponseWriter, r *http.Request) {
	page, err := h.UC.ListByTemplate(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"), pageRequest(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AssignmentHandler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	page, err := h.UC.GetByTemplateAndDateRange(r.Context(), middleware.OwnerID(r.Context()),
		chi.URLParam(r, "id"), start, end, pageRequest(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AssignmentHandler) DateRangeSummaries(w http.ResponseWriter, r *http.Request) {
	list, err := h.UC.DateRangeSummaries(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AssignmentHandler) SendBulkToDateRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	var req bulkEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.sendBulk(w, r, usecase.BulkSendInput{
		TemplateID:   chi.URLParam(r, "id"),
		Cohort:       usecase.Cohort{Start: start, End: end},
		Subject:      req.Subject,
		Body:         req.Body,
		IsHTML:       req.IsHTML,
		ScheduleTime: req.scheduleAt(),
	})
}

func (h *AssignmentHandler) SendBulkToRecruiters(w http.ResponseWriter, r *http.Request) {
	var req bulkEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.sendBulk(w, r, usecase.BulkSendInput{
		TemplateID:   req.TemplateID,
		Cohort:       usecase.Cohort{RecruiterIDs: req.RecruiterIDs},
		Subject:      req.Subject,
		Body:         req.Body,
		IsHTML:       req.IsHTML,
		ScheduleTime: req.scheduleAt(),
	})
}

func (h *AssignmentHandler) sendBulk(w http.ResponseWriter, r *http.Request, input usecase.BulkSendInput) {
	summary, err := h.BulkSend.Execute(r.Context(), middleware.OwnerID(r.Context()), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	middleware.RecordBulkBatch()
	status := "sent"
	if summary.Scheduled {
		status = "scheduled"
	}
	middleware.RecordEmailsSent("bulk", status, summary.SuccessCount)
	middleware.RecordEmailsSent("bulk", "failed", summary.FailureCount)
	writeJSON(w, http.StatusOK, summary)
}

func (h *AssignmentHandler) MarkEmailSent(w http.ResponseWriter, r *http.Request) {
	if err := h.UC.MarkEmailSent(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AssignmentHandler) MoveToFollowup(w http.ResponseWriter, r *http.Request) {
	move, err := h.UC.MoveToFollowup(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, move)
}

func (h *AssignmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.UC.UpdateStatus(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.UC.Delete(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete takes a bare JSON array of assignment ids.
func (h *AssignmentHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
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
