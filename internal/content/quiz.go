package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pavelanni/gradewizard/internal/llm"
	"github.com/pavelanni/gradewizard/internal/llm/prompts"
	"github.com/pavelanni/gradewizard/internal/model"
)

// QuizOptions is the number of answer options per quiz question.
const QuizOptions = 4

const minExplanation = 10

// Catalog lists the quiz topics per category.
var Catalog = map[string][]string{
	"history":   {"World History", "Ancient Civilizations", "Modern History", "Military History", "Historical Figures"},
	"science":   {"Physics", "Chemistry", "Biology", "Astronomy", "Technology", "Inventions"},
	"geography": {"World Geography", "Physical Geography", "Climate", "Landforms", "Economic Geography"},
	"arts":      {"Painting", "Music", "Cinema", "Literature", "Architecture"},
	"sports":    {"Football", "Basketball", "Olympics", "Sports History", "Championships"},
	"culture":   {"World Traditions", "Global Cuisine", "Festivals", "Mythology", "Languages"},
}

var difficulties = []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}

var categories = func() []string {
	out := make([]string, 0, len(Catalog))
	for c := range Catalog {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}()

// QuizSchema is the structural contract for generated quiz JSON.
var QuizSchema = &llm.Schema{
	Name: "quiz-question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string", "minLength": 1},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"minItems": QuizOptions,
				"maxItems": QuizOptions,
			},
			"correctAnswer": map[string]any{"type": "string", "minLength": 1},
			"explanation":   map[string]any{"type": "string"},
			"category":      map[string]any{"type": "string"},
			"topic":         map[string]any{"type": "string"},
			"difficulty":    map[string]any{"type": "string"},
		},
		"required": []string{"question", "options", "correctAnswer", "explanation", "category", "topic", "difficulty"},
	},
}

// Quiz generates one question in the given language for a random category,
// topic and difficulty. The correct answer lands at a random position.
func (s *Service) Quiz(ctx context.Context, language string) (model.QuizQuestion, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = "en"
	}
	category := categories[s.intN(len(categories))]
	topics := Catalog[category]
	topic := topics[s.intN(len(topics))]
	difficulty := difficulties[s.intN(len(difficulties))]

	prompt, err := s.prompts.Quiz(prompts.QuizData{
		Language:   language,
		Category:   category,
		Topic:      topic,
		Difficulty: string(difficulty),
	})
	if err != nil {
		return model.QuizQuestion{}, err
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, PurposeQuiz), llm.Request{
		Prompt:      prompt,
		Schema:      QuizSchema,
		MaxTokens:   800,
		Temperature: 0.9,
		TopK:        40,
		TopP:        0.95,
	})
	if err != nil {
		return model.QuizQuestion{}, fmt.Errorf("quiz: %w", err)
	}

	var q model.QuizQuestion
	if err := json.Unmarshal([]byte(llm.StripFences(resp.Text)), &q); err != nil {
		return model.QuizQuestion{}, fmt.Errorf("quiz: %w", &llm.ErrInvalidResponse{Content: resp.Text, Err: err})
	}
	if err := ValidateQuiz(q); err != nil {
		return model.QuizQuestion{}, fmt.Errorf("quiz: %w", &llm.ErrInvalidResponse{Content: resp.Text, Err: err})
	}

	q.Options = s.placeCorrect(q.Options, q.CorrectAnswer)
	slog.Info("generated quiz", "category", q.Category, "topic", q.Topic, "difficulty", q.Difficulty, "language", language)
	return q, nil
}

// ValidateQuiz checks the rules the schema cannot express: four unique
// options, the correct answer among them, and a real explanation.
func ValidateQuiz(q model.QuizQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question is empty")
	}
	if len(q.Options) != QuizOptions {
		return fmt.Errorf("want %d options, got %d", QuizOptions, len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o] {
			return fmt.Errorf("duplicate option %q", o)
		}
		seen[o] = true
	}
	if !seen[q.CorrectAnswer] {
		return fmt.Errorf("correct answer %q is not among the options", q.CorrectAnswer)
	}
	if utf8.RuneCountInString(strings.TrimSpace(q.Explanation)) < minExplanation {
		return fmt.Errorf("explanation shorter than %d characters", minExplanation)
	}
	return nil
}

// placeCorrect shuffles the wrong answers and inserts the correct one at a
// uniformly random position.
func (s *Service) placeCorrect(options []string, correct string) []string {
	wrong := slices.DeleteFunc(slices.Clone(options), func(o string) bool { return o == correct })
	s.shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	pos := s.intN(len(wrong) + 1)
	return slices.Insert(wrong, pos, correct)
}
