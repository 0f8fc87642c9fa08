package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	appI18n "github.com/pavelanni/gradewizard/internal/i18n"
	"github.com/pavelanni/gradewizard/internal/model"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encode response", "error", err)
		}
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, model.ErrorResponse{Detail: detail, StatusCode: status})
}

// fail maps err onto the error envelope. Invalid input becomes a 400 that
// names the problem; anything else is logged and reported with the
// localized generic message msgID.
func fail(w http.ResponseWriter, r *http.Request, err error, msgID string) {
	if errors.Is(err, model.ErrInvalidInput) {
		reason := strings.TrimPrefix(err.Error(), model.ErrInvalidInput.Error()+": ")
		respondError(w, http.StatusBadRequest,
			appI18n.Td(r.Context(), "ErrInvalidRequest", map[string]any{"Reason": reason}))
		return
	}
	slog.Error("request failed", "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, appI18n.T(r.Context(), msgID))
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", model.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", model.ErrInvalidInput)
	}
	return nil
}
