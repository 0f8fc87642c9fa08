package synth

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pavelanni/gradewizard/internal/features"
)

// Effort ranges. High performers draw from the narrow band.
const (
	fullHoursMax   = 12.0
	narrowHoursMin = 1.0
	narrowHoursMax = 4.0
	fullMotMin     = 1
	fullMotMax     = 10
	narrowMotMin   = 2
	narrowMotMax   = 5

	priorMean = 70.0
	priorSD   = 15.0
)

// Sample is one labeled training record.
type Sample struct {
	Features      features.Record
	Grade         float64
	HighPerformer bool
}

// Generator draws independent samples for one formula variant.
// It is not safe for concurrent use.
type Generator struct {
	variant Variant
	rng     *rand.Rand
	prior   distuv.Normal
}

// NewGenerator returns a generator driven by src.
func NewGenerator(v Variant, src rand.Source) *Generator {
	return &Generator{
		variant: v,
		rng:     rand.New(src),
		prior:   distuv.Normal{Mu: priorMean, Sigma: priorSD, Src: src},
	}
}

// Variant returns the formula variant the generator labels with.
func (g *Generator) Variant() Variant {
	return g.variant
}

// Sample produces one labeled record.
func (g *Generator) Sample() Sample {
	in := Inputs{
		PriorGrade: g.prior.Rand(),
		Subtopics:  make([]float64, features.NumSubtopics),
	}
	for i := range in.Subtopics {
		in.Subtopics[i] = g.variant.Levels[g.rng.IntN(len(g.variant.Levels))]
	}

	high := g.variant.IsHighPerformer(in)
	if high {
		in.StudyHours = narrowHoursMin + g.rng.Float64()*(narrowHoursMax-narrowHoursMin)
		in.Motivation = float64(narrowMotMin + g.rng.IntN(narrowMotMax-narrowMotMin+1))
	} else {
		in.StudyHours = g.rng.Float64() * fullHoursMax
		in.Motivation = float64(fullMotMin + g.rng.IntN(fullMotMax-fullMotMin+1))
	}

	return Sample{
		Features:      RecordFor(in),
		Grade:         g.variant.Grade(in),
		HighPerformer: high,
	}
}

// RecordFor lays out formula inputs as a feature record. Each main topic is
// the mean of its three subtopics.
func RecordFor(in Inputs) features.Record {
	r := make(features.Record, len(features.Columns))
	for t := 0; t < features.NumTopics; t++ {
		group := in.Subtopics[t*features.SubtopicsPerTopic : (t+1)*features.SubtopicsPerTopic]
		r[features.TopicColumn(t+1)] = meanOf(group)
		for s, v := range group {
			r[features.SubtopicColumn(t+1, s+1)] = v
		}
	}
	r[features.StudyHours] = in.StudyHours
	r[features.PrevGrade] = in.PriorGrade
	r[features.Motivation] = in.Motivation
	return r
}
