package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appI18n "github.com/pavelanni/gradewizard/internal/i18n"
	"github.com/pavelanni/gradewizard/internal/model"
	"github.com/pavelanni/gradewizard/internal/predict"
)

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req model.PredictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, "ErrPrediction")
		return
	}
	if n := len(req.Answers); n < predict.NumAnswers {
		respondError(w, http.StatusBadRequest, appI18n.Tp(r.Context(), "ErrTooFewAnswers", n,
			map[string]any{"Want": predict.NumAnswers}))
		return
	}

	res, err := h.adapter.Predict(req)
	if err != nil {
		fail(w, r, err, "ErrPrediction")
		return
	}
	if h.metrics != nil {
		h.metrics.ObservePrediction(string(res.Source), res.Grade)
	}
	if h.config.LogPredictions && h.store != nil {
		h.logPrediction(res)
	}
	respondJSON(w, http.StatusOK, model.PredictResponse{PredictedGrade: res.Grade})
}

// logPrediction stores the served prediction. Failures only cost the audit
// row, so they are logged and the response goes out regardless.
func (h *Handler) logPrediction(res predict.Result) {
	feats, err := json.Marshal(res.Features)
	if err != nil {
		slog.Warn("marshal prediction features", "error", err)
		return
	}
	if _, err := h.store.InsertPrediction(model.PredictionLog{
		Features:       string(feats),
		PredictedGrade: res.Grade,
		ModelSource:    string(res.Source),
	}); err != nil {
		slog.Warn("log prediction", "error", err)
	}
}
