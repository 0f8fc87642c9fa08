// Package features defines the fixed feature schema shared by the training
// pipeline and the prediction adapter.
package features

import (
	"fmt"
	"math"
)

// Column names in the order the regressor sees them. Training and serving
// must agree on both the names and the order.
const (
	Topic1     = "topic_1"
	Topic2     = "topic_2"
	Topic3     = "topic_3"
	StudyHours = "study_hours"
	PrevGrade  = "previous_grade"
	Motivation = "motivation"
)

const (
	NumTopics         = 3
	SubtopicsPerTopic = 3
	NumSubtopics      = NumTopics * SubtopicsPerTopic
)

// Columns is the canonical column order.
var Columns = []string{
	Topic1, Topic2, Topic3,
	SubtopicColumn(1, 1), SubtopicColumn(1, 2), SubtopicColumn(1, 3),
	SubtopicColumn(2, 1), SubtopicColumn(2, 2), SubtopicColumn(2, 3),
	SubtopicColumn(3, 1), SubtopicColumn(3, 2), SubtopicColumn(3, 3),
	StudyHours, PrevGrade, Motivation,
}

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(Columns))
	for i, c := range Columns {
		m[c] = i
	}
	return m
}()

// TopicColumn returns the main topic column for topic t (1-based).
func TopicColumn(t int) string {
	return fmt.Sprintf("topic_%d", t)
}

// SubtopicColumn returns the column for subtopic s of topic t (both 1-based).
func SubtopicColumn(t, s int) string {
	return fmt.Sprintf("topic_%d_sub_%d", t, s)
}

// Index returns the position of a column in Columns.
func Index(name string) (int, bool) {
	i, ok := columnIndex[name]
	return i, ok
}

// Record maps column names to values. Order is irrelevant; names are exact keys.
type Record map[string]float64

// Row converts the record to a slice in Columns order. It fails when a column
// is missing, an unknown key is present, or a value is not finite.
func (r Record) Row() ([]float64, error) {
	row := make([]float64, len(Columns))
	for k, v := range r {
		i, ok := columnIndex[k]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature %q is not finite", k)
		}
		row[i] = v
	}
	if len(r) != len(Columns) {
		for _, c := range Columns {
			if _, ok := r[c]; !ok {
				return nil, fmt.Errorf("missing feature %q", c)
			}
		}
	}
	return row, nil
}

// FromRow builds a record from a row in Columns order.
func FromRow(row []float64) (Record, error) {
	if len(row) != len(Columns) {
		return nil, fmt.Errorf("row has %d values, want %d", len(row), len(Columns))
	}
	r := make(Record, len(Columns))
	for i, c := range Columns {
		r[c] = row[i]
	}
	return r, nil
}
