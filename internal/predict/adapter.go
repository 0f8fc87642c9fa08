package predict

import (
	"errors"
	"fmt"
	"math"

	"github.com/pavelanni/gradewizard/internal/features"
	"github.com/pavelanni/gradewizard/internal/model"
	"github.com/pavelanni/gradewizard/internal/synth"
)

// ErrPrediction reports a model that produced an unusable value.
var ErrPrediction = errors.New("prediction failed")

// Result is one served prediction.
type Result struct {
	Grade    float64
	Source   Source
	Variant  string
	Features features.Record
}

// Adapter builds feature rows from requests and runs the active model.
type Adapter struct {
	models *Holder
	layout Layout
}

// NewAdapter returns an adapter that reads the model from h on every call.
func NewAdapter(h *Holder, layout Layout) *Adapter {
	if layout == "" {
		layout = LayoutConsistent
	}
	return &Adapter{models: h, layout: layout}
}

// Layout returns the configured feature layout.
func (a *Adapter) Layout() Layout {
	return a.layout
}

// Predict returns the grade for the request, clipped to [0, 100] and rounded
// to two decimals.
func (a *Adapter) Predict(req model.PredictRequest) (Result, error) {
	cur := a.models.Load()
	rec, err := BuildRecord(req, cur.Variant, a.layout)
	if err != nil {
		return Result{}, err
	}
	row, err := rec.Row()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	raw, err := cur.Model.Predict(row)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	return Result{
		Grade:    Round2(synth.Clip(raw, 0, 100)),
		Source:   cur.Source,
		Variant:  cur.Variant.Name,
		Features: rec,
	}, nil
}

// BuildRecord maps the request onto the feature schema. Answers beyond the
// ninth are ignored. Ordinals are rescaled from the 0..2 answer scale to the
// variant's subtopic scale.
func BuildRecord(req model.PredictRequest, v synth.Variant, layout Layout) (features.Record, error) {
	if len(req.Answers) < NumAnswers {
		return nil, fmt.Errorf("%w: need %d answers, got %d", model.ErrInvalidInput, NumAnswers, len(req.Answers))
	}
	scale := v.MaxLevel() / maxOrdinal
	ans := make([]float64, NumAnswers)
	for i := range ans {
		ans[i] = float64(AnswerOrdinal(req.Answers[i])) * scale
	}

	in := synth.Inputs{
		Subtopics:  ans,
		StudyHours: req.FormData.StudyHours.Or(DefaultStudyHours),
		PriorGrade: req.FormData.PreviousGrade.Or(DefaultPreviousGrade),
		Motivation: req.FormData.Motivation.Or(DefaultMotivation),
	}

	switch layout {
	case LayoutLegacy:
		return legacyRecord(ans, in), nil
	case LayoutConsistent, "":
		return synth.RecordFor(in), nil
	}
	return nil, fmt.Errorf("unknown feature layout %q", layout)
}

func legacyRecord(ans []float64, in synth.Inputs) features.Record {
	r := make(features.Record, len(features.Columns))
	for t := 1; t <= features.NumTopics; t++ {
		r[features.TopicColumn(t)] = ans[t-1]
	}
	for s := 1; s <= features.SubtopicsPerTopic; s++ {
		r[features.SubtopicColumn(1, s)] = ans[2+s]
		r[features.SubtopicColumn(2, s)] = ans[5+s]
		r[features.SubtopicColumn(3, s)] = ans[5+s]
	}
	r[features.StudyHours] = in.StudyHours
	r[features.PrevGrade] = in.PriorGrade
	r[features.Motivation] = in.Motivation
	return r
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
