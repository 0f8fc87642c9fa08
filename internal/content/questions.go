package content

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/pavelanni/gradewizard/internal/llm"
	"github.com/pavelanni/gradewizard/internal/llm/prompts"
	"github.com/pavelanni/gradewizard/internal/model"
)

// QuestionsPerTopic is the number of subtopics kept per topic.
const QuestionsPerTopic = 3

var listMarker = regexp.MustCompile(`^\s*(?:[-*•▪]|\d+[.)])\s*`)

// Questions generates up to three subtopic lines per non-blank topic. Topics
// are queried concurrently; a failed topic is logged and dropped. Results
// keep topic order. It fails with ErrNoContent when every topic fails.
func (s *Service) Questions(ctx context.Context, req model.QuestionsRequest) (model.QuestionsResponse, error) {
	topics := req.Topics()
	if len(topics) == 0 {
		return model.QuestionsResponse{}, fmt.Errorf("%w: at least one topic is required", model.ErrInvalidInput)
	}
	ctx = llm.WithPurpose(ctx, PurposeQuestions)

	results := make([][]string, len(topics))
	p := pool.New().WithMaxGoroutines(s.maxWorkers)
	for i, topic := range topics {
		p.Go(func() {
			lines, err := s.subtopics(ctx, req.Subject, topic)
			if err != nil {
				slog.Warn("subtopic generation failed", "topic", topic, "error", err)
				return
			}
			results[i] = lines
		})
	}
	p.Wait()

	var questions []string
	for _, r := range results {
		questions = append(questions, r...)
	}
	if len(questions) == 0 {
		return model.QuestionsResponse{}, fmt.Errorf("%w: every topic failed", ErrNoContent)
	}
	return model.QuestionsResponse{
		Questions:     questions,
		QuestionCount: len(questions),
		Success:       true,
	}, nil
}

func (s *Service) subtopics(ctx context.Context, subject, topic string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.topicTimeout)
	defer cancel()

	prompt, err := s.prompts.Subtopics(prompts.SubtopicsData{Subject: subject, Topic: topic})
	if err != nil {
		return nil, err
	}
	resp, err := s.provider.Generate(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.8,
	})
	if err != nil {
		return nil, err
	}
	lines := FirstLines(resp.Text, QuestionsPerTopic)
	if len(lines) == 0 {
		return nil, ErrNoContent
	}
	return lines, nil
}

// FirstLines returns up to n non-empty lines of text with list markers and
// markdown emphasis removed.
func FirstLines(text string, n int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}
