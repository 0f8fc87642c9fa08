package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
	errs  []error
}

func (o *recordingObserver) ObserveGeneration(purpose, model string, _ time.Duration, _ Usage, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, purpose+"/"+model)
	o.errs = append(o.errs, err)
}

func TestObserverSeesEveryAttempt(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Text: "ok"},
	)
	obs := &recordingObserver{}
	p := WithRetry(WithObserver(mock, obs), retryConfig())

	resp, err := p.Generate(WithPurpose(context.Background(), "feedback"), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, []string{"feedback/mock", "feedback/mock"}, obs.calls)
	assert.Error(t, obs.errs[0])
	assert.NoError(t, obs.errs[1])
	assert.Equal(t, "mock", p.ModelID())
}

func TestPurposeFrom(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "quiz", PurposeFrom(WithPurpose(context.Background(), "quiz")))
}

func TestMapErrors(t *testing.T) {
	var rl *ErrRateLimit
	var unavail *ErrProviderUnavailable
	var rejected *ErrRequestRejected

	assert.ErrorAs(t, mapGeminiError(&genai.APIError{Code: http.StatusTooManyRequests}), &rl)
	assert.ErrorAs(t, mapGeminiError(&genai.APIError{Code: http.StatusBadGateway}), &unavail)
	assert.ErrorAs(t, mapGeminiError(&genai.APIError{Code: http.StatusRequestTimeout}), &unavail)
	assert.ErrorAs(t, mapGeminiError(errors.New("dial tcp")), &unavail)
	assert.ErrorIs(t, mapGeminiError(context.Canceled), context.Canceled)

	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		err := mapGeminiError(&genai.APIError{Code: code})
		if assert.ErrorAs(t, err, &rejected, "gemini %d", code) {
			assert.Equal(t, code, rejected.Status)
		}
		assert.ErrorAs(t, mapOpenAIError(&openai.APIError{HTTPStatusCode: code}), &rejected, "openai %d", code)
	}

	assert.ErrorAs(t, mapOpenAIError(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}), &rl)
	assert.ErrorAs(t, mapOpenAIError(&openai.RequestError{HTTPStatusCode: http.StatusTooManyRequests}), &rl)
	assert.ErrorAs(t, mapOpenAIError(&openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}), &unavail)
	assert.ErrorAs(t, mapOpenAIError(&openai.RequestError{HTTPStatusCode: http.StatusUnauthorized}), &rejected)
	assert.ErrorIs(t, mapOpenAIError(context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"gemini without key", func(c *Config) {}, true},
		{"gemini with key", func(c *Config) { c.Gemini.APIKey = "k" }, false},
		{"openai without key", func(c *Config) { c.Provider = ProviderOpenAI }, true},
		{"openai with key", func(c *Config) { c.Provider = ProviderOpenAI; c.OpenAI.APIKey = "k" }, false},
		{"mock", func(c *Config) { c.Provider = ProviderMock }, false},
		{"unknown", func(c *Config) { c.Provider = "carrier-pigeon" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestNewProviderMock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}

func TestBuildGeminiSchema(t *testing.T) {
	s := buildGeminiSchema(pointSchema.Definition)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"x", "y"}, s.Required)
	require.Contains(t, s.Properties, "x")
	assert.Equal(t, genai.TypeNumber, s.Properties["x"].Type)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-1.5-pro", resolveModel("gemini-1.5-pro", geminiModels))
}
