package content

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/gradewizard/internal/llm"
	"github.com/pavelanni/gradewizard/internal/model"
)

func TestPlanHours(t *testing.T) {
	tests := []struct {
		days, hours, want int
	}{
		{3, 2, 6},
		{7, 3, 21},
		{30, 4, 28},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlanHours(tt.days, tt.hours), "%d days x %d hours", tt.days, tt.hours)
	}
}

func TestFormatStudyPlan(t *testing.T) {
	req := model.StudyPlanRequest{Topics: []string{"Algebra", "Geometry"}, TotalDays: 10, HoursPerDay: 3}
	got := FormatStudyPlan(req, "## Week 1\n* Review  algebra\n- Practice\n▪ Test\n\n\n\nDone")

	assert.True(t, strings.HasPrefix(got, "🎓 PERSONALIZED STUDY PLAN"))
	assert.Contains(t, got, "Total Duration:\n 21 hours")
	assert.Contains(t, got, "• Algebra, • Geometry")
	assert.Contains(t, got, "• Review algebra")
	assert.Contains(t, got, "• Practice")
	assert.Contains(t, got, "• Test")
	assert.Contains(t, got, "✅ DAILY CHECKLIST")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "*")
	assert.NotContains(t, got, "  ")
	assert.NotContains(t, got, "\n\n\n")
}

func TestStudyPlan(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "* Day 1 algebra"})
	s := newTestService(t, mock)

	resp, err := s.StudyPlan(context.Background(), model.StudyPlanRequest{Topics: []string{"Algebra"}, TotalDays: 5, HoursPerDay: 2})
	require.NoError(t, err)
	assert.Contains(t, resp.StudyPlan, "• Day 1 algebra")
	require.Equal(t, 1, mock.CallCount())
	assert.Contains(t, mock.Calls[0].Prompt, "Total: 10 hours")
	assert.Equal(t, 2500, mock.Calls[0].MaxTokens)
}

func TestStudyPlanInvalid(t *testing.T) {
	mock := llm.NewMockProvider()
	s := newTestService(t, mock)
	for _, req := range []model.StudyPlanRequest{
		{TotalDays: 5, HoursPerDay: 2},
		{Topics: []string{"A"}, HoursPerDay: 2},
		{Topics: []string{"A"}, TotalDays: 5},
	} {
		_, err := s.StudyPlan(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	}
	assert.Equal(t, 0, mock.CallCount())
}

func TestStudyPlanUpstreamFailure(t *testing.T) {
	s := newTestService(t, llm.NewMockProvider())
	_, err := s.StudyPlan(context.Background(), model.StudyPlanRequest{Topics: []string{"A"}, TotalDays: 1, HoursPerDay: 1})
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}
