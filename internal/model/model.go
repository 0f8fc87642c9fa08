package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput marks malformed or insufficient request payloads.
var ErrInvalidInput = errors.New("invalid input")

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleAdmin may reload the model and read training history.
	UserRoleAdmin UserRole = "admin"
)

// User represents an operator account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// Difficulty represents quiz question difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Number is a JSON number that also accepts numeric strings, as sent by the
// mobile form. Absent, null, empty or unparseable values decode as unset.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a set Number.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		v = f
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Num(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value, or def when unset.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// QuestionsRequest asks for subtopic questions for up to three topics.
type QuestionsRequest struct {
	Subject       string `json:"subject"`
	Topic1        string `json:"topic1"`
	Topic2        string `json:"topic2"`
	Topic3        string `json:"topic3"`
	PreviousGrade Number `json:"previousGrade"`
	Motivation    Number `json:"motivation"`
	StudyHours    Number `json:"studyHours"`
}

// Topics returns the non-blank topics in order.
func (r QuestionsRequest) Topics() []string {
	var out []string
	for _, t := range []string{r.Topic1, r.Topic2, r.Topic3} {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// QuestionsResponse lists the generated subtopic questions.
type QuestionsResponse struct {
	Questions     []string `json:"questions"`
	QuestionCount int      `json:"questionCount"`
	Success       bool     `json:"success"`
}

// FormData carries the scalar prediction inputs.
type FormData struct {
	StudyHours    Number `json:"studyHours"`
	PreviousGrade Number `json:"previousGrade"`
	Motivation    Number `json:"motivation"`
}

// UnmarshalJSON ignores keys other than the three numbers. The mobile client
// posts its whole form here, subject and topics included.
func (f *FormData) UnmarshalJSON(b []byte) error {
	type plain FormData
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*f = FormData(p)
	return nil
}

// PredictRequest is the body of the prediction endpoint.
type PredictRequest struct {
	Answers  []string `json:"answers"`
	FormData FormData `json:"formData"`
}

// PredictResponse carries a grade in [0, 100] rounded to two decimals.
type PredictResponse struct {
	PredictedGrade float64 `json:"predicted_grade"`
}

// StudyPlanRequest asks for a study plan.
type StudyPlanRequest struct {
	Topics      []string `json:"topics"`
	TotalDays   int      `json:"totalDays"`
	HoursPerDay int      `json:"hoursPerDay"`
}

// Validate checks required fields and ranges.
func (r StudyPlanRequest) Validate() error {
	if len(r.Topics) == 0 {
		return fmt.Errorf("%w: at least one topic is required", ErrInvalidInput)
	}
	if r.TotalDays <= 0 {
		return fmt.Errorf("%w: totalDays must be positive", ErrInvalidInput)
	}
	if r.HoursPerDay <= 0 || r.HoursPerDay > 24 {
		return fmt.Errorf("%w: hoursPerDay must be between 1 and 24", ErrInvalidInput)
	}
	return nil
}

// StudyPlanResponse carries the formatted plan.
type StudyPlanResponse struct {
	StudyPlan string `json:"study_plan"`
}

// FeedbackRequest asks for feedback on a prediction. Grade is required;
// studyHours and motivation default to 0 when absent.
type FeedbackRequest struct {
	Grade      *float64 `json:"grade"`
	StudyHours Number   `json:"studyHours"`
	Motivation Number   `json:"motivation"`
	Subjects   []string `json:"subjects"`
}

// Validate checks required fields and ranges.
func (r FeedbackRequest) Validate() error {
	if r.Grade == nil {
		return fmt.Errorf("%w: grade is required", ErrInvalidInput)
	}
	if *r.Grade < 0 || *r.Grade > 100 {
		return fmt.Errorf("%w: grade must be within [0, 100]", ErrInvalidInput)
	}
	return nil
}

// FeedbackResponse carries the cleaned feedback text.
type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

// QuizQuestion is a single multiple-choice quiz question.
type QuizQuestion struct {
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Category      string     `json:"category"`
	Topic         string     `json:"topic"`
	Difficulty    Difficulty `json:"difficulty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

// HealthResponse reports liveness and the active model.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	ModelSource string `json:"model_source"`
	Variant     string `json:"variant"`
}

// ReloadResponse reports the model serving after an admin reload.
type ReloadResponse struct {
	ModelSource string `json:"model_source"`
	Variant     string `json:"variant"`
	Trees       int    `json:"trees"`
}

// TrainingRun records one execution of the training pipeline.
type TrainingRun struct {
	ID           int64              `json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	Variant      string             `json:"variant"`
	Samples      int                `json:"samples"`
	Trees        int                `json:"trees"`
	LearningRate float64            `json:"learning_rate"`
	MaxDepth     int                `json:"max_depth"`
	CVMAE        float64            `json:"cv_mae"`
	TestMAE      float64            `json:"test_mae"`
	BaselineMAE  float64            `json:"baseline_mae"`
	ModelPath    string             `json:"model_path"`
	ModelSHA256  string             `json:"model_sha256"`
	Importances  map[string]float64 `json:"importances"`
}

// PredictionLog records one served prediction.
type PredictionLog struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Features       string    `json:"features"`
	PredictedGrade float64   `json:"predicted_grade"`
	ModelSource    string    `json:"model_source"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	Lang           string        // default UI language for error messages
	ModelPath      string        // artifact reloaded by the admin endpoint
	FeatureLayout  string        // consistent or legacy
	TopicTimeout   time.Duration // per generative call in the subtopic fan-out
	MaxWorkers     int           // fan-out pool size
	AllowedOrigins []string
	AdminEnabled   bool
	LogPredictions bool
}
