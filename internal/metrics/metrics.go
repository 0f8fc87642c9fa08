// Package metrics holds the Prometheus collectors of the grade service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavelanni/gradewizard/internal/llm"
)

// Metrics owns a registry and every collector registered on it.
type Metrics struct {
	reg *prometheus.Registry

	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	Predictions        *prometheus.CounterVec
	PredictedGrade     prometheus.Histogram
	GenerationDuration *prometheus.HistogramVec
	GenerationTokens   *prometheus.CounterVec
	ModelInfo          *prometheus.GaugeVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradewizard_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gradewizard_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"route"},
		),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradewizard_predictions_total",
				Help: "Served predictions by model source",
			},
			[]string{"source"},
		),
		PredictedGrade: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gradewizard_predicted_grade",
				Help:    "Distribution of predicted grades",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gradewizard_generation_duration_seconds",
				Help:    "Generative API call latency by purpose and outcome",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"purpose", "status"},
		),
		GenerationTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradewizard_generation_tokens_total",
				Help: "Tokens consumed by the generative API",
			},
			[]string{"model", "type"},
		),
		ModelInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gradewizard_model_info",
				Help: "Active model; the series with value 1 is current",
			},
			[]string{"source", "variant"},
		),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.Predictions,
		m.PredictedGrade,
		m.GenerationDuration,
		m.GenerationTokens,
		m.ModelInfo,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObservePrediction records one served grade.
func (m *Metrics) ObservePrediction(source string, grade float64) {
	m.Predictions.WithLabelValues(source).Inc()
	m.PredictedGrade.Observe(grade)
}

// SetModel marks the given model as the active one.
func (m *Metrics) SetModel(source, variant string) {
	m.ModelInfo.Reset()
	m.ModelInfo.WithLabelValues(source, variant).Set(1)
}

// ObserveGeneration implements llm.Observer.
func (m *Metrics) ObserveGeneration(purpose, model string, elapsed time.Duration, usage llm.Usage, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.GenerationDuration.WithLabelValues(purpose, status).Observe(elapsed.Seconds())
	if usage.InputTokens > 0 {
		m.GenerationTokens.WithLabelValues(model, "input").Add(float64(usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		m.GenerationTokens.WithLabelValues(model, "output").Add(float64(usage.OutputTokens))
	}
}

// Middleware counts requests by chi route pattern and status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
