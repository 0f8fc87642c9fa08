package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelanni/gradewizard/internal/llm"
	"github.com/pavelanni/gradewizard/internal/llm/prompts"
	"github.com/pavelanni/gradewizard/internal/model"
)

// feedbackSections are headings moved onto their own lines, in English and
// Turkish.
var feedbackSections = []string{
	"STRENGTHS", "AREAS FOR IMPROVEMENT", "SUGGESTIONS", "MOTIVATIONAL MESSAGE",
	"GÜÇLÜ YÖNLER", "GELİŞİM ALANLARI", "ÖNERİLER", "MOTİVASYONEL MESAJ",
}

var feedbackGlyphs = strings.NewReplacer(
	"*", "", "#", "",
	"•", "-", "→", "-", "▪", "-", "○", "-", "●", "-",
)

// Feedback generates cleaned feedback text for a predicted grade.
func (s *Service) Feedback(ctx context.Context, req model.FeedbackRequest) (model.FeedbackResponse, error) {
	if err := req.Validate(); err != nil {
		return model.FeedbackResponse{}, err
	}
	prompt, err := s.prompts.Feedback(prompts.FeedbackData{
		Grade:      *req.Grade,
		StudyHours: req.StudyHours.Or(0),
		Motivation: req.Motivation.Or(0),
		Subjects:   req.Subjects,
	})
	if err != nil {
		return model.FeedbackResponse{}, err
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, PurposeFeedback), llm.Request{
		Prompt:      prompt,
		MaxTokens:   800,
		Temperature: 0.7,
		TopP:        0.8,
	})
	if err != nil {
		return model.FeedbackResponse{}, fmt.Errorf("feedback: %w", err)
	}
	text := CleanFeedback(resp.Text)
	if text == "" {
		return model.FeedbackResponse{}, fmt.Errorf("feedback: %w", ErrNoContent)
	}
	return model.FeedbackResponse{Feedback: text}, nil
}

// CleanFeedback strips markdown, normalizes bullet glyphs to "-", and puts
// each section heading on its own line.
func CleanFeedback(s string) string {
	s = feedbackGlyphs.Replace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	s = strings.TrimSpace(s)
	for _, h := range feedbackSections {
		s = strings.ReplaceAll(s, h+":", "\n"+h+":\n")
	}
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
