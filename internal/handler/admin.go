package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	appI18n "github.com/pavelanni/gradewizard/internal/i18n"
	"github.com/pavelanni/gradewizard/internal/model"
)

const (
	defaultPredictionLimit = 100
	maxPredictionLimit     = 1000
)

func (h *Handler) handleReloadModel(w http.ResponseWriter, r *http.Request) {
	l := h.models.Reload(h.config.ModelPath)
	if h.metrics != nil {
		h.metrics.SetModel(string(l.Source), l.Variant.Name)
	}
	user := model.UserFromContext(r.Context())
	slog.Info("model reloaded via admin", "user", user.Username, "source", l.Source, "path", l.Path)
	respondJSON(w, http.StatusOK, model.ReloadResponse{
		ModelSource: string(l.Source),
		Variant:     l.Variant.Name,
		Trees:       len(l.Model.Trees),
	})
}

func (h *Handler) handleTrainingRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListTrainingRuns()
	if err != nil {
		fail(w, r, err, "ErrInternal")
		return
	}
	if runs == nil {
		runs = []model.TrainingRun{}
	}
	respondJSON(w, http.StatusOK, runs)
}

func (h *Handler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	limit := defaultPredictionLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest,
				appI18n.Td(r.Context(), "ErrInvalidRequest", map[string]any{"Reason": "limit must be a positive integer"}))
			return
		}
		limit = min(n, maxPredictionLimit)
	}
	preds, err := h.store.ListPredictions(limit)
	if err != nil {
		fail(w, r, err, "ErrInternal")
		return
	}
	if preds == nil {
		preds = []model.PredictionLog{}
	}
	respondJSON(w, http.StatusOK, preds)
}
