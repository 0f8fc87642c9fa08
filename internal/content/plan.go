package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelanni/gradewizard/internal/llm"
	"github.com/pavelanni/gradewizard/internal/llm/prompts"
	"github.com/pavelanni/gradewizard/internal/model"
)

// MaxPlanDays caps the days counted toward a plan's total hours.
const MaxPlanDays = 7

const planFooter = `✅ DAILY CHECKLIST
• Prepare your study environment
• Keep water and snacks nearby
• Silence your phone
• Take notes of what you've learned
• Summarize at the end of the day
• Review the plan for the next day

💡 REMEMBER
• Regular review is the key to success
• Don't skip your breaks
• Do mini quizzes daily
• Note down topics you find difficult
• Track your progress`

// StudyPlan generates and formats a study plan.
func (s *Service) StudyPlan(ctx context.Context, req model.StudyPlanRequest) (model.StudyPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return model.StudyPlanResponse{}, err
	}
	total := PlanHours(req.TotalDays, req.HoursPerDay)
	prompt, err := s.prompts.StudyPlan(prompts.StudyPlanData{
		Topics:       req.Topics,
		TotalDays:    req.TotalDays,
		HoursPerDay:  req.HoursPerDay,
		TotalHours:   total,
		MorningHours: req.HoursPerDay / 2,
		EveningHours: req.HoursPerDay - req.HoursPerDay/2,
	})
	if err != nil {
		return model.StudyPlanResponse{}, err
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, PurposeStudyPlan), llm.Request{
		Prompt:      prompt,
		MaxTokens:   2500,
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.95,
	})
	if err != nil {
		return model.StudyPlanResponse{}, fmt.Errorf("study plan: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return model.StudyPlanResponse{}, fmt.Errorf("study plan: %w", ErrNoContent)
	}
	return model.StudyPlanResponse{StudyPlan: FormatStudyPlan(req, resp.Text)}, nil
}

// PlanHours is hoursPerDay times the number of days, capped at a week.
func PlanHours(totalDays, hoursPerDay int) int {
	return min(MaxPlanDays, totalDays) * hoursPerDay
}

// FormatStudyPlan wraps generated text in the header and footer blocks and
// normalizes bullets and whitespace.
func FormatStudyPlan(req model.StudyPlanRequest, generated string) string {
	bullets := make([]string, len(req.Topics))
	for i, t := range req.Topics {
		bullets[i] = "• " + t
	}

	body := strings.NewReplacer("*", "•", "-", "•", "▪", "•", "#", "").Replace(generated)

	var b strings.Builder
	b.WriteString("🎓 PERSONALIZED STUDY PLAN\n\n")
	fmt.Fprintf(&b, "⏰ Daily Study: %d hours\n", req.HoursPerDay)
	fmt.Fprintf(&b, "📅 Total Duration: %d hours\n", PlanHours(req.TotalDays, req.HoursPerDay))
	b.WriteString("📚 Topics to Study:\n")
	b.WriteString(strings.Join(bullets, ", "))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n\n")
	b.WriteString(planFooter)

	out := collapse(b.String())
	out = strings.ReplaceAll(out, ":", ":\n")
	return strings.TrimSpace(out)
}

// collapse squeezes runs of spaces and limits blank lines to one.
func collapse(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
