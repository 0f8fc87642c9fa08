// Package prompts renders the embedded prompt templates sent to the
// generative API.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names.
const (
	Subtopics = "subtopics.tmpl"
	StudyPlan = "study_plan.tmpl"
	Feedback  = "feedback.tmpl"
	Quiz      = "quiz.tmpl"
)

var required = []string{Subtopics, StudyPlan, Feedback, Quiz}

const maxInputRunes = 200

var controlRegex = regexp.MustCompile(`[\x00-\x1f\x7f]+`)

var funcs = template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
}

// SubtopicsData holds template data for the subtopic prompt.
type SubtopicsData struct {
	Subject string
	Topic   string
}

// StudyPlanData holds template data for the study plan prompt.
type StudyPlanData struct {
	Topics       []string
	TotalDays    int
	HoursPerDay  int
	TotalHours   int
	MorningHours int
	EveningHours int
}

// FeedbackData holds template data for the feedback prompt.
type FeedbackData struct {
	Grade      float64
	StudyHours float64
	Motivation float64
	Subjects   []string
}

// QuizData holds template data for the quiz prompt.
type QuizData struct {
	Language   string
	Category   string
	Topic      string
	Difficulty string
}

// Set is a parsed collection of prompt templates.
type Set struct {
	tmpl *template.Template
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
	defaultErr  error
)

// Default returns the embedded templates, parsed once.
func Default() (*Set, error) {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = Parse(templateFS)
	})
	return defaultSet, defaultErr
}

// Parse reads templates/*.tmpl from fsys. Every known template must exist.
func Parse(fsys fs.FS) (*Set, error) {
	t, err := template.New("prompts").Funcs(funcs).ParseFS(fsys, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}
	for _, name := range required {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("prompt template %s is missing", name)
		}
	}
	return &Set{tmpl: t}, nil
}

func (s *Set) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Subtopics asks for the three most important subtopics of a topic.
func (s *Set) Subtopics(d SubtopicsData) (string, error) {
	d.Subject = Sanitize(d.Subject)
	d.Topic = Sanitize(d.Topic)
	return s.render(Subtopics, d)
}

// StudyPlan asks for a study plan.
func (s *Set) StudyPlan(d StudyPlanData) (string, error) {
	d.Topics = sanitizeAll(d.Topics)
	return s.render(StudyPlan, d)
}

// Feedback asks for feedback on a predicted grade.
func (s *Set) Feedback(d FeedbackData) (string, error) {
	d.Subjects = sanitizeAll(d.Subjects)
	return s.render(Feedback, d)
}

// Quiz asks for one multiple-choice question as JSON.
func (s *Set) Quiz(d QuizData) (string, error) {
	d.Language = Sanitize(d.Language)
	return s.render(Quiz, d)
}

// Sanitize flattens control characters, strips quotes that would break out
// of the quoted prompt slot, and truncates long input.
func Sanitize(s string) string {
	s = controlRegex.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxInputRunes {
		s = string([]rune(s)[:maxInputRunes])
	}
	return s
}

func sanitizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = Sanitize(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
