package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

const dateLayout = "2006-01-02"

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUseCaseError maps use case errors onto HTTP status codes. Unknown
// errors are logged and hidden behind a 500.
func writeUseCaseError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, domainStatus(de.Code), ErrorResponse{Error: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		if te.Code == usecase.CodeTransport {
			middleware.RecordIntegrationError("mail")
			writeError(w, http.StatusBadGateway, te.Code, te.Message)
			return
		}
		logger.Error("request failed", zap.String("code", te.Code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, te.Code, "internal error")
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}

func domainStatus(code string) int {
	switch code {
	case usecase.CodeValidation:
		return http.StatusBadRequest
	case usecase.CodeNotFound:
		return http.StatusNotFound
	case usecase.CodeUnauthorized:
		return http.StatusUnauthorized
	case usecase.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// pageRequest reads ?page&size; bad values fall back to the defaults.
func pageRequest(r *http.Request) entity.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return entity.PageRequest{Page: page, Size: size}.Normalize()
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be formatted as YYYY-MM-DD", name)
	}
	return t, nil
}

// dateRange reads startDate and endDate, reporting both problems at once.
func dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, startErr := queryDate(r, "startDate")
	end, endErr := queryDate(r, "endDate")
	var fields []usecase.ValidationError
	if startErr != nil {
		fields = append(fields, usecase.ValidationError{Field: "startDate", Message: startErr.Error()})
	}
	if endErr != nil {
		fields = append(fields, usecase.ValidationError{Field: "endDate", Message: endErr.Error()})
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   usecase.CodeValidation,
			Message: "invalid date range",
			Fields:  fields,
		})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
