package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError classifies err and writes it with the matching status.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := errorKind(err)
	status := statusForKind(kind)

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		var compErr *domain.CompensationError
		if !errors.As(err, &compErr) {
			message = "internal server error"
		}
	}

	writeJSON(w, status, dto.ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Kind:      string(kind),
		Retryable: kind.Retryable(),
	})
}

// writeOperationError writes a failed operation envelope.
func writeOperationError(w http.ResponseWriter, err error) {
	kind := errorKind(err)
	status := statusForKind(kind)

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("operation command failed")
		var compErr *domain.CompensationError
		if !errors.As(err, &compErr) {
			message = "internal server error"
		}
	}

	writeJSON(w, status, dto.OperationResult{
		Success:   false,
		Message:   message,
		Kind:      string(kind),
		Retryable: kind.Retryable(),
	})
}

func errorKind(err error) domain.ErrorKind {
	if errors.Is(err, dto.ErrValidationFailed) {
		return domain.KindInvalidArgument
	}
	return domain.KindOf(err)
}

// statusForKind maps error kinds to HTTP status codes.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientLimit:
		return http.StatusUnprocessableEntity
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindInvalidState, domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads and validates a request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", dto.ErrValidationFailed, err)
	}
	return dto.Validate(v)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
