package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry(t *testing.T) {
	down := func() MockResponse { return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}} }
	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{{Text: "ok"}}, false, 1},
		{"transient then success", []MockResponse{down(), {Text: "ok"}}, false, 2},
		{"rate limited then success", []MockResponse{{Err: &ErrRateLimit{Err: errors.New("429")}}, {Text: "ok"}}, false, 2},
		{"all attempts fail", []MockResponse{down(), down(), down(), {Text: "never"}}, true, 3},
		{"max tokens not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, {Text: "ok"}}, true, 1},
		{"invalid retried once", []MockResponse{
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			{Text: "ok"},
		}, true, 2},
		{"network error", []MockResponse{{Err: errors.New("connection reset")}, {Text: "ok"}}, false, 2},
		{"rejected request not retried", []MockResponse{
			{Err: &ErrRequestRejected{Status: 400, Err: errors.New("API key not valid")}},
			{Text: "ok"},
		}, true, 1},
		{"gemini 401 not retried", []MockResponse{
			{Err: mapGeminiError(&genai.APIError{Code: http.StatusUnauthorized})},
			{Text: "ok"},
		}, true, 1},
		{"gemini 503 retried", []MockResponse{
			{Err: mapGeminiError(&genai.APIError{Code: http.StatusServiceUnavailable})},
			{Text: "ok"},
		}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			resp, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{Prompt: "p"})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ok", resp.Text)
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Text: "ok"},
	)
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryContextErrorNotRetried(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: context.DeadlineExceeded}, MockResponse{Text: "ok"})
	_, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryDelay(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2}}
	other := errors.New("x")

	for i, base := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second} {
		attempt := i + 1
		got := r.delay(attempt, other)
		assert.InDelta(t, float64(base), float64(got), float64(base)*0.2+1, "attempt %d", attempt)
	}

	rl := &ErrRateLimit{RetryAfter: 3 * time.Second}
	assert.Equal(t, 3*time.Second, r.delay(1, rl))
}
