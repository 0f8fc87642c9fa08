// Package synth generates labeled synthetic training data for the grade
// regressor from a fixed scoring formula.
package synth

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Variant is one fixed parameterization of the target grade formula.
// The regressor approximates whichever variant produced its training labels,
// so the variant name travels with every persisted model.
type Variant struct {
	Name string

	// Levels is the discrete set subtopic scores are drawn from.
	Levels []float64

	SubtopicWeight   float64
	PriorWeight      float64
	PriorCap         float64
	MotivationWeight float64
	StudyWeight      float64

	// A sample is a high performer when its prior grade exceeds
	// HighPerformerPrior and its mean subtopic score exceeds HighPerformerMean.
	HighPerformerPrior float64
	HighPerformerMean  float64
}

// Ordinal3 matches the three-level answer scale used at serving time.
var Ordinal3 = Variant{
	Name:               "ordinal3",
	Levels:             []float64{0, 1, 2},
	SubtopicWeight:     18,
	PriorWeight:        0.4,
	PriorCap:           40,
	MotivationWeight:   0.3,
	StudyWeight:        0.15,
	HighPerformerPrior: 80,
	HighPerformerMean:  1.2,
}

// FivePoint uses the sparse 0-5 subtopic scale.
var FivePoint = Variant{
	Name:               "fivepoint",
	Levels:             []float64{0, 2, 3, 4, 5},
	SubtopicWeight:     15,
	PriorWeight:        0.3,
	PriorCap:           30,
	MotivationWeight:   0.25,
	StudyWeight:        0.12,
	HighPerformerPrior: 80,
	HighPerformerMean:  3,
}

// Default is the variant used when none is named.
var Default = Ordinal3

var variants = map[string]Variant{
	Ordinal3.Name:  Ordinal3,
	FivePoint.Name: FivePoint,
}

// Lookup returns the variant with the given name.
func Lookup(name string) (Variant, error) {
	if name == "" {
		return Default, nil
	}
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown formula variant %q (known: %v)", name, VariantNames())
	}
	return v, nil
}

// VariantNames lists the registered variant names in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MaxLevel is the highest subtopic score of the variant.
func (v Variant) MaxLevel() float64 {
	m := 0.0
	for _, l := range v.Levels {
		m = math.Max(m, l)
	}
	return m
}

// Inputs are the formula's independent variables.
type Inputs struct {
	Subtopics  []float64
	PriorGrade float64
	StudyHours float64
	Motivation float64
}

// Effects are the additive components of a grade before clipping.
type Effects struct {
	Subtopic   float64
	PriorGrade float64
	Motivation float64
	Study      float64
}

// Sum is the unclipped grade.
func (e Effects) Sum() float64 {
	return e.Subtopic + e.PriorGrade + e.Motivation + e.Study
}

// IsHighPerformer reports whether the inputs fall in the band where the grade
// ignores effort and motivation.
func (v Variant) IsHighPerformer(in Inputs) bool {
	return in.PriorGrade > v.HighPerformerPrior && meanOf(in.Subtopics) > v.HighPerformerMean
}

// Effects computes the formula components for the inputs.
func (v Variant) Effects(in Inputs) Effects {
	e := Effects{
		Subtopic:   meanOf(in.Subtopics) * v.SubtopicWeight,
		PriorGrade: math.Min(in.PriorGrade*v.PriorWeight, v.PriorCap),
	}
	if !v.IsHighPerformer(in) {
		e.Motivation = in.Motivation * v.MotivationWeight
		e.Study = in.StudyHours * v.StudyWeight
	}
	return e
}

// Grade is the target grade for the inputs, always within [0, 100].
func (v Variant) Grade(in Inputs) float64 {
	return Clip(v.Effects(in).Sum(), 0, 100)
}

// Clip bounds x to [lo, hi].
func Clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
