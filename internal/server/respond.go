package server

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Tomlord1122/portfolio-backend/internal/service"
	"github.com/Tomlord1122/portfolio-backend/internal/validation"
)

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details validation.Errors `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type dataEnvelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

func respondWithData(w http.ResponseWriter, code int, data any) {
	respondWithJSON(w, code, dataEnvelope{Data: data})
}

func respondWithError(w http.ResponseWriter, status int, code, message string, details validation.Errors) {
	respondWithJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message, Details: details}})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal JSON response", slog.Any("error", err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"Internal server error preparing response"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func setRetryAfter(w http.ResponseWriter, resetAt time.Time) {
	if resetAt.IsZero() {
		return
	}
	secs := int(math.Ceil(time.Until(resetAt).Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
}

// respondWithServiceError maps a service failure onto the REST error envelope.
func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := service.AsError(err)
	if !ok {
		s.log.Error("unhandled error", slog.String("path", r.URL.Path), slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error.", nil)
		return
	}

	switch se.Kind {
	case service.KindInvalidInput:
		respondWithError(w, http.StatusBadRequest, "INVALID_JSON", se.Message, nil)
	case service.KindValidation:
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", se.Message, se.Fields)
	case service.KindUnauthenticated:
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", se.Message, nil)
	case service.KindForbidden:
		respondWithError(w, http.StatusForbidden, "FORBIDDEN", se.Message, nil)
	case service.KindQuotaExceeded:
		respondWithError(w, http.StatusForbidden, "LIMIT_REACHED", se.Message, nil)
	case service.KindNotFound:
		respondWithError(w, http.StatusNotFound, "NOT_FOUND", se.Message, nil)
	case service.KindRateLimited:
		s.metrics.rateLimited(routePattern(r))
		setRetryAfter(w, se.ResetAt)
		respondWithError(w, http.StatusTooManyRequests, "RATE_LIMITED", se.Message, nil)
	case service.KindConflict:
		respondWithError(w, http.StatusConflict, "CONFLICT", se.Message, nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", se.Message, nil)
	}
}
