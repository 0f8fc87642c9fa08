package content

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/gradewizard/internal/llm"
	"github.com/pavelanni/gradewizard/internal/model"
)

func newTestService(t *testing.T, p llm.Provider, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithRandSource(rand.NewPCG(1, 2))}, opts...)
	s, err := New(p, opts...)
	require.NoError(t, err)
	return s
}

func topicOf(prompt string) string {
	start := strings.Index(prompt, `"`)
	end := strings.Index(prompt[start+1:], `"`)
	return prompt[start+1 : start+1+end]
}

func TestQuestionsFanOut(t *testing.T) {
	var inflight, peak atomic.Int32
	mock := &llm.MockProvider{Respond: func(ctx context.Context, req llm.Request) (string, error) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		topic := topicOf(req.Prompt)
		if topic == "Broken" {
			return "", &llm.ErrProviderUnavailable{Err: errors.New("503")}
		}
		return "1. " + topic + " A\n\n- " + topic + " B\n* " + topic + " C\n" + topic + " D", nil
	}}
	s := newTestService(t, mock, WithMaxWorkers(2))

	resp, err := s.Questions(context.Background(), model.QuestionsRequest{
		Topic1: "Algebra",
		Topic2: "Broken",
		Topic3: "Geometry",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"Algebra A", "Algebra B", "Algebra C", "Geometry A", "Geometry B", "Geometry C"}, resp.Questions)
	assert.Equal(t, 6, resp.QuestionCount)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 3, mock.CallCount())
	for _, c := range mock.Calls {
		assert.Equal(t, 200, c.MaxTokens)
	}
}

func TestQuestionsSkipsBlankTopics(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "x\ny\nz"})
	s := newTestService(t, mock)

	resp, err := s.Questions(context.Background(), model.QuestionsRequest{Topic1: "  ", Topic2: "Cells"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, resp.Questions)
	assert.Equal(t, 1, mock.CallCount())

	_, err = s.Questions(context.Background(), model.QuestionsRequest{Topic1: " "})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestQuestionsAllFail(t *testing.T) {
	mock := &llm.MockProvider{Respond: func(context.Context, llm.Request) (string, error) {
		return "", &llm.ErrProviderUnavailable{}
	}}
	s := newTestService(t, mock)
	_, err := s.Questions(context.Background(), model.QuestionsRequest{Topic1: "A", Topic2: "B"})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestQuestionsTopicTimeout(t *testing.T) {
	mock := &llm.MockProvider{Respond: func(ctx context.Context, req llm.Request) (string, error) {
		if topicOf(req.Prompt) == "Slow" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "fast 1\nfast 2\nfast 3", nil
	}}
	s := newTestService(t, mock, WithTopicTimeout(20*time.Millisecond))

	resp, err := s.Questions(context.Background(), model.QuestionsRequest{Topic1: "Slow", Topic2: "Fast"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fast 1", "fast 2", "fast 3"}, resp.Questions)
}

func TestFirstLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want []string
	}{
		{"plain", "a\nb\nc\nd", 3, []string{"a", "b", "c"}},
		{"blank lines", "\n\na\n  \nb", 3, []string{"a", "b"}},
		{"numbered", "1. **Cell wall**\n2) Membrane\n• Nucleus", 3, []string{"Cell wall", "Membrane", "Nucleus"}},
		{"empty", "", 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstLines(tt.in, tt.n))
		})
	}
}
