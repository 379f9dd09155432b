package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

type EmailHandler struct {
	Send      *usecase.SendEmailUseCase
	Scheduled *usecase.ScheduledEmailUseCase
	Logger    *zap.Logger
}

func NewEmailHandler(send *usecase.SendEmailUseCase, scheduled *usecase.ScheduledEmailUseCase, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{Send: send, Scheduled: scheduled, Logger: logger}
}

func (h *EmailHandler) Routes(r chi.Router) {
	r.Post("/send", h.SendEmail)
	r.Post("/send-template", h.SendTemplate)
	r.Get("/logs", h.Logs)
	r.Get("/scheduled", h.ListScheduled)
	r.Delete("/scheduled/{id}", h.CancelScheduled)
}

func (h *EmailHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendEmailInput
	if !decodeJSON(w, r, &input) {
		return
	}
	res, err := h.Send.Send(r.Context(), middleware.OwnerID(r.Context()), input)
	h.writeSendResult(w, "single", res, err)
}

func (h *EmailHandler) SendTemplate(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendTemplateInput
	if !decodeJSON(w, r, &input) {
		return
	}
	res, err := h.Send.SendTemplate(r.Context(), middleware.OwnerID(r.Context()), input)
	h.writeSendResult(w, "template", res, err)
}

// writeSendResult reports transport failures as an EmailResponse body so the
// client sees the same shape on success and failure.
func (h *EmailHandler) writeSendResult(w http.ResponseWriter, channel string, res *usecase.EmailResponse, err error) {
	if err != nil {
		var te *usecase.TechnicalError
		if errors.As(err, &te) && te.Code == usecase.CodeTransport {
			middleware.RecordEmailsSent(channel, "failed", 1)
			middleware.RecordIntegrationError("mail")
			writeJSON(w, http.StatusBadGateway, usecase.EmailResponse{
				Success:     false,
				Message:     "Failed to send email",
				ErrorCode:   te.Code,
				ErrorDetail: te.Message,
			})
			return
		}
		writeUseCaseError(w, h.Logger, err)
		return
	}

	status := "sent"
	if res.Scheduled {
		status = "scheduled"
	}
	middleware.RecordEmailsSent(channel, status, 1)
	writeJSON(w, http.StatusOK, res)
}

func (h *EmailHandler) Logs(w http.ResponseWriter, r *http.Request) {
	page, err := h.Send.ListLogs(r.Context(), middleware.OwnerID(r.Context()), pageRequest(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *EmailHandler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	page, err := h.Scheduled.List(r.Context(), middleware.OwnerID(r.Context()), pageRequest(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *EmailHandler) CancelScheduled(w http.ResponseWriter, r *http.Request) {
	if err := h.Scheduled.Cancel(r.Context(), middleware.OwnerID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
