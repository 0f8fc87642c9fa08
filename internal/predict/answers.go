// Package predict turns questionnaire answers and form data into the feature
// row the grade regressor was trained on, and manages the active model.
package predict

import (
	"fmt"
	"strings"
)

// Answer ordinals on the three-level questionnaire scale.
const (
	Unknown     = 0
	KnowsLittle = 1
	KnowsWell   = 2

	maxOrdinal = KnowsWell
)

// Form defaults applied when a field is absent, empty or unparseable.
const (
	DefaultStudyHours    = 5.0
	DefaultPreviousGrade = 70.0
	DefaultMotivation    = 7.0
)

// NumAnswers is the number of answers a prediction needs.
const NumAnswers = 9

var answerAliases = map[string]int{
	"knows well":      KnowsWell,
	"yes, i know":     KnowsWell,
	"yes":             KnowsWell,
	"evet biliyorum":  KnowsWell,
	"evet, biliyorum": KnowsWell,
	"knows a little":  KnowsLittle,
	"somewhat":        KnowsLittle,
	"biraz biliyorum": KnowsLittle,
	"biraz":           KnowsLittle,
}

// AnswerOrdinal maps a free-text answer to 2, 1 or 0. Matching ignores case
// and surrounding whitespace; anything unrecognized is 0.
func AnswerOrdinal(s string) int {
	return answerAliases[strings.ToLower(strings.Join(strings.Fields(s), " "))]
}

// Layout selects how answers are placed into feature columns.
type Layout string

const (
	// LayoutConsistent places answer i at subtopic (i/3+1, i%3+1) and sets
	// each main topic to the mean of its subtopics, as the generator does.
	LayoutConsistent Layout = "consistent"
	// LayoutLegacy uses answers 0..2 as main topics, 3..5 as topic 1
	// subtopics, and 6..8 as the subtopics of both topic 2 and topic 3.
	LayoutLegacy Layout = "legacy"
)

// ParseLayout validates a layout name. Empty selects LayoutConsistent.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutConsistent:
		return LayoutConsistent, nil
	case LayoutLegacy:
		return LayoutLegacy, nil
	}
	return "", fmt.Errorf("unknown feature layout %q (want %s or %s)", s, LayoutConsistent, LayoutLegacy)
}
