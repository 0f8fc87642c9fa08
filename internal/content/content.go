// Package content generates the text endpoints' payloads: subtopic
// questions, study plans, feedback and quiz questions.
package content

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pavelanni/gradewizard/internal/llm"
	"github.com/pavelanni/gradewizard/internal/llm/prompts"
)

// ErrNoContent reports that the generative API produced nothing usable.
var ErrNoContent = errors.New("no content generated")

// Purposes label generative calls for logs and metrics.
const (
	PurposeQuestions = "questions"
	PurposeStudyPlan = "study_plan"
	PurposeFeedback  = "feedback"
	PurposeQuiz      = "quiz"
)

const (
	DefaultTopicTimeout = 10 * time.Second
	DefaultMaxWorkers   = 10
)

// Service wraps a Provider with the prompts and post-processing for every
// content endpoint. It is safe for concurrent use.
type Service struct {
	provider     llm.Provider
	prompts      *prompts.Set
	topicTimeout time.Duration
	maxWorkers   int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithTopicTimeout bounds each subtopic call.
func WithTopicTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.topicTimeout = d
		}
	}
}

// WithMaxWorkers bounds the subtopic fan-out.
func WithMaxWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxWorkers = n
		}
	}
}

// WithRandSource fixes the source used for quiz selection and shuffling.
func WithRandSource(src rand.Source) Option {
	return func(s *Service) {
		s.rng = rand.New(src)
	}
}

// New returns a Service using the embedded prompt templates.
func New(p llm.Provider, opts ...Option) (*Service, error) {
	set, err := prompts.Default()
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}
	s := &Service{
		provider:     p,
		prompts:      set,
		topicTimeout: DefaultTopicTimeout,
		maxWorkers:   DefaultMaxWorkers,
		rng:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Service) intN(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.IntN(n)
}

func (s *Service) shuffle(n int, swap func(i, j int)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(n, swap)
}
