package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/gradewizard/internal/content"
	appI18n "github.com/pavelanni/gradewizard/internal/i18n"
	"github.com/pavelanni/gradewizard/internal/metrics"
	"github.com/pavelanni/gradewizard/internal/model"
	"github.com/pavelanni/gradewizard/internal/predict"
	"github.com/pavelanni/gradewizard/internal/store"
)

// Deps are the process-scoped services the handlers share. Store and
// Metrics are optional.
type Deps struct {
	Content *content.Service
	Models  *predict.Holder
	Adapter *predict.Adapter
	Store   *store.Store
	Metrics *metrics.Metrics
	Config  model.ServerConfig
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	content *content.Service
	models  *predict.Holder
	adapter *predict.Adapter
	store   *store.Store
	metrics *metrics.Metrics
	config  model.ServerConfig
	now     func() time.Time
}

// New creates a new Handler.
func New(d Deps) (*Handler, error) {
	if d.Content == nil || d.Models == nil || d.Adapter == nil {
		return nil, errors.New("handler: content, models and adapter are required")
	}
	if d.Config.AdminEnabled && d.Store == nil {
		return nil, errors.New("handler: admin routes need a store")
	}
	return &Handler{
		content: d.Content,
		models:  d.Models,
		adapter: d.Adapter,
		store:   d.Store,
		metrics: d.Metrics,
		config:  d.Config,
		now:     time.Now,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(SecurityHeaders)

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Post("/generate_questions", h.handleQuestions)
	r.Post("/predict", h.handlePredict)
	r.Post("/generate_study_plan", h.handleStudyPlan)
	r.Post("/generate_feedback", h.handleFeedback)
	r.Get("/generate_quiz", h.handleQuiz)

	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}

	if h.config.AdminEnabled {
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/model/reload", h.handleReloadModel)
			r.Get("/training-runs", h.handleTrainingRuns)
			r.Get("/predictions", h.handlePredictions)
		})
	}

	r.NotFound(h.handleNotFound)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": appI18n.T(r.Context(), "RootMessage")})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	cur := h.models.Load()
	respondJSON(w, http.StatusOK, model.HealthResponse{
		Status:      "healthy",
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		ModelSource: string(cur.Source),
		Variant:     cur.Variant.Name,
	})
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, appI18n.T(r.Context(), "ErrNotFound"))
}
