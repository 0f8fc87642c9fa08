package synth

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func subs(v float64) []float64 {
	s := make([]float64, 9)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestGradeClipped(t *testing.T) {
	for _, v := range []Variant{Ordinal3, FivePoint} {
		t.Run(v.Name, func(t *testing.T) {
			tests := []struct {
				name string
				in   Inputs
			}{
				{"all zero", Inputs{Subtopics: subs(0)}},
				{"negative prior", Inputs{Subtopics: subs(0), PriorGrade: -80}},
				{"everything maxed", Inputs{Subtopics: subs(v.MaxLevel()), PriorGrade: 400, StudyHours: 500, Motivation: 500}},
				{"low mastery huge effort", Inputs{Subtopics: subs(0), PriorGrade: 50, StudyHours: 1000, Motivation: 1000}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					g := v.Grade(tt.in)
					if g < 0 || g > 100 {
						t.Errorf("Grade() = %v, outside [0, 100]", g)
					}
				})
			}
		})
	}
}

func TestEffects(t *testing.T) {
	in := Inputs{Subtopics: subs(1), PriorGrade: 60, StudyHours: 10, Motivation: 5}
	e := Ordinal3.Effects(in)
	if !approx(e.Subtopic, 18) {
		t.Errorf("Subtopic = %v, want 18", e.Subtopic)
	}
	if !approx(e.PriorGrade, 24) {
		t.Errorf("PriorGrade = %v, want 24", e.PriorGrade)
	}
	if !approx(e.Motivation, 1.5) {
		t.Errorf("Motivation = %v, want 1.5", e.Motivation)
	}
	if !approx(e.Study, 1.5) {
		t.Errorf("Study = %v, want 1.5", e.Study)
	}
	if got := Ordinal3.Grade(in); !approx(got, 45) {
		t.Errorf("Grade = %v, want 45", got)
	}
}

func TestPriorGradeCapped(t *testing.T) {
	for _, v := range []Variant{Ordinal3, FivePoint} {
		e := v.Effects(Inputs{Subtopics: subs(0), PriorGrade: 1000})
		if e.PriorGrade != v.PriorCap {
			t.Errorf("%s: PriorGrade effect = %v, want cap %v", v.Name, e.PriorGrade, v.PriorCap)
		}
	}
}

func TestHighPerformerIgnoresEffort(t *testing.T) {
	in := Inputs{Subtopics: subs(4), PriorGrade: 85, StudyHours: 3, Motivation: 4}
	if !FivePoint.IsHighPerformer(in) {
		t.Fatal("expected high performer")
	}
	e := FivePoint.Effects(in)
	if e.Motivation != 0 || e.Study != 0 {
		t.Errorf("effort effects = (%v, %v), want zero", e.Motivation, e.Study)
	}

	// Exactly at the thresholds is not a high performer.
	edge := Inputs{Subtopics: subs(3), PriorGrade: 80, StudyHours: 3, Motivation: 4}
	if FivePoint.IsHighPerformer(edge) {
		t.Error("thresholds are strict")
	}
}

func TestLookup(t *testing.T) {
	v, err := Lookup("")
	if err != nil || v.Name != Default.Name {
		t.Errorf("Lookup(\"\") = %v, %v", v.Name, err)
	}
	v, err = Lookup("fivepoint")
	if err != nil || v.Name != "fivepoint" {
		t.Errorf("Lookup(fivepoint) = %v, %v", v.Name, err)
	}
	if _, err := Lookup("nope"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestHighPerformerThresholdScalesWithLevels(t *testing.T) {
	for _, v := range []Variant{Ordinal3, FivePoint} {
		if want := 0.6 * v.MaxLevel(); !approx(v.HighPerformerMean, want) {
			t.Errorf("%s: HighPerformerMean = %v, want %v", v.Name, v.HighPerformerMean, want)
		}
	}
}
