package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/pavelanni/gradewizard/internal/content"
	"github.com/pavelanni/gradewizard/internal/handler"
	appI18n "github.com/pavelanni/gradewizard/internal/i18n"
	"github.com/pavelanni/gradewizard/internal/llm"
	"github.com/pavelanni/gradewizard/internal/metrics"
	"github.com/pavelanni/gradewizard/internal/model"
	"github.com/pavelanni/gradewizard/internal/predict"
	"github.com/pavelanni/gradewizard/internal/store"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	defaults := llm.DefaultConfig()
	f := cmd.Flags()
	f.StringP("addr", "a", ":8000", "HTTP listen address")
	f.String("db", "gradewizard.db", "SQLite database path")
	f.StringP("model", "m", defaultModelPath, "Model artifact path (the .bak copy is the fallback)")
	f.String("feature-layout", string(predict.LayoutConsistent), "Prediction feature layout (consistent, legacy)")
	f.StringP("lang", "l", "tr", "Default language for error messages (en, tr)")
	f.String("llm-provider", defaults.Provider, "Generative API provider (gemini, openai, mock)")
	f.String("gemini-api-key", "", "Gemini API key (or set GRADEWIZARD_GEMINI_API_KEY)")
	f.String("gemini-model", defaults.Gemini.Model, "Gemini model name")
	f.String("openai-api-key", "", "API key for the OpenAI-compatible provider")
	f.String("openai-model", defaults.OpenAI.Model, "OpenAI-compatible model name")
	f.String("openai-url", "", "OpenAI-compatible API base URL (empty for api.openai.com)")
	f.Int("llm-max-attempts", defaults.Retry.MaxAttempts, "Attempts per generative call, including the first")
	f.Duration("topic-timeout", content.DefaultTopicTimeout, "Timeout of each subtopic call")
	f.Int("max-workers", content.DefaultMaxWorkers, "Concurrent subtopic calls per request")
	f.Duration("request-timeout", 60*time.Second, "Overall request timeout")
	f.StringSlice("allowed-origins", []string{"*"}, "CORS allowed origins")
	f.Bool("admin", false, "Enable the basic-auth admin routes")
	f.String("admin-password", "", "Initial admin password (or set GRADEWIZARD_ADMIN_PASSWORD)")
	f.Bool("log-predictions", true, "Store every served prediction in the database")
	addLogFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	layout, err := predict.ParseLayout(v.GetString("feature-layout"))
	if err != nil {
		return err
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	cfg := model.ServerConfig{
		Lang:           lang,
		ModelPath:      v.GetString("model"),
		FeatureLayout:  string(layout),
		TopicTimeout:   v.GetDuration("topic-timeout"),
		MaxWorkers:     v.GetInt("max-workers"),
		AllowedOrigins: v.GetStringSlice("allowed-origins"),
		AdminEnabled:   v.GetBool("admin"),
		LogPredictions: v.GetBool("log-predictions"),
	}

	if cfg.AdminEnabled {
		if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	llmCfg := llm.DefaultConfig()
	llmCfg.Provider = v.GetString("llm-provider")
	llmCfg.Gemini.APIKey = v.GetString("gemini-api-key")
	llmCfg.Gemini.Model = v.GetString("gemini-model")
	llmCfg.OpenAI.APIKey = v.GetString("openai-api-key")
	llmCfg.OpenAI.Model = v.GetString("openai-model")
	llmCfg.OpenAI.BaseURL = v.GetString("openai-url")
	llmCfg.Retry.MaxAttempts = v.GetInt("llm-max-attempts")
	provider, err := llm.NewProvider(ctx, llmCfg, m)
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	svc, err := content.New(provider,
		content.WithTopicTimeout(cfg.TopicTimeout),
		content.WithMaxWorkers(cfg.MaxWorkers),
	)
	if err != nil {
		return fmt.Errorf("create content service: %w", err)
	}

	models := predict.NewHolder(predict.LoadModel(cfg.ModelPath))
	cur := models.Load()
	m.SetModel(string(cur.Source), cur.Variant.Name)

	h, err := handler.New(handler.Deps{
		Content: svc,
		Models:  models,
		Adapter: predict.NewAdapter(models, layout),
		Store:   db,
		Metrics: m,
		Config:  cfg,
	})
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(middleware.Timeout(v.GetDuration("request-timeout")))
	r.Use(middleware.Compress(5, "application/json", "text/plain"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting server",
		"addr", addr,
		"llm_provider", llmCfg.Provider,
		"model_id", provider.ModelID(),
		"model_source", cur.Source,
		"variant", cur.Variant.Name,
		"feature_layout", layout,
		"lang", lang,
		"admin", cfg.AdminEnabled,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
