package insight

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

var ErrInvalidPrompt = errors.New("prompt input does not match its type")

// Generator produces insight content from a Prompt.
type Generator interface {
	GenerateInsight(ctx context.Context, prompt Prompt) (Content, error)
	Model() string
}

// FallbackGenerator builds insights from fixed templates. It is deterministic and needs no network.
type FallbackGenerator struct{}

var _ Generator = FallbackGenerator{} // interface compliance check

func NewFallbackGenerator() FallbackGenerator { return FallbackGenerator{} }

func (FallbackGenerator) Model() string { return modelFallback }

func (gen FallbackGenerator) GenerateInsight(_ context.Context, prompt Prompt) (Content, error) {
	switch {
	case prompt.Type == TypeTaskBreakdown && prompt.Breakdown != nil:
		return gen.breakdown(prompt.Breakdown.Task), nil
	case prompt.Type == TypeProgressSummary && prompt.Summary != nil:
		return gen.summary(*prompt.Summary), nil
	case prompt.Type == TypeStudySuggestion && prompt.Suggestion != nil:
		return gen.suggestions(prompt.Suggestion.Role, prompt.Suggestion.Tasks), nil
	}
	return nil, errors.Wrapf(ErrInvalidPrompt, "type %s", prompt.Type)
}

func (FallbackGenerator) breakdown(t task.Task) Breakdown {
	base := 60
	if t.EstimatedTime != nil {
		base = *t.EstimatedTime
	}
	return Breakdown{
		Subtasks: []Subtask{
			{
				Title:              "Research and Planning",
				Description:        "Gather information and create a study plan for: " + t.Title,
				EstimatedTime:      max(15, base/4),
				LearningObjectives: []string{"Understand requirements", "Create timeline", "Identify resources"},
				Resources:          []string{"Online articles", "Course materials", "Documentation"},
				SuccessCriteria:    "Complete research notes and timeline",
			},
			{
				Title:              "Core Learning Phase",
				Description:        "Study the main concepts and theory for: " + t.Title,
				EstimatedTime:      max(30, base/2),
				LearningObjectives: []string{"Master core concepts", "Understand theory", "Take detailed notes"},
				Resources:          []string{"Textbooks", "Video tutorials", "Online courses"},
				SuccessCriteria:    "Can explain key concepts clearly",
			},
			{
				Title:              "Practice and Application",
				Description:        "Apply knowledge through exercises and practice for: " + t.Title,
				EstimatedTime:      max(15, base/4),
				LearningObjectives: []string{"Apply concepts", "Practice skills", "Build confidence"},
				Resources:          []string{"Practice exercises", "Projects", "Quizzes"},
				SuccessCriteria:    "Complete all practice exercises successfully",
			},
		},
		TotalEstimatedTime: base,
		StudyTips: []string{
			"Take regular breaks every 25-30 minutes",
			"Practice active learning techniques",
			"Review progress regularly",
			"Ask questions when stuck",
			"Connect new knowledge to existing understanding",
		},
		Prerequisites: []string{"Basic understanding of the topic", "Access to learning materials"},
	}
}

// CompletionRate is the share of completed tasks, in percent.
func CompletionRate(in SummaryInput) float64 {
	if in.TotalTasks <= 0 {
		return 0
	}
	return float64(in.CompletedTasks) / float64(in.TotalTasks) * 100
}

// OverallScore is the mean of the completion rate and the average progress, clamped to [50, 95].
func OverallScore(in SummaryInput) int {
	score := int(math.Round((CompletionRate(in) + in.AverageProgress) / 2))
	return min(95, max(50, score))
}

// Trend classifies a completion rate. The thresholds are strict.
func Trend(rate float64) string {
	switch {
	case rate > 70:
		return "improving"
	case rate > 40:
		return "stable"
	}
	return "needs attention"
}

func (FallbackGenerator) summary(in SummaryInput) Summary {
	rate := CompletionRate(in)
	score := OverallScore(in)

	strengths := []string{"Getting started", "Learning engagement", "Consistent effort"}
	if in.CompletedTasks > 0 {
		strengths[0] = "Task completion"
	}
	if in.TotalTimeSpent > 0 {
		strengths[1] = "Time tracking"
	}

	areas := []string{"Study efficiency", "Time management", "Goal setting"}
	habits := "Continue with current learning pace and set more challenging goals"
	if rate < 50 {
		areas[0] = "Task completion rate"
		habits = "Focus on completing smaller tasks to build momentum"
	}

	var message string
	switch {
	case score > 75:
		message = "Excellent progress! You're doing great and staying on track."
	case score > 50:
		message = "Good effort! Keep pushing forward and you'll see great results."
	default:
		message = "Every expert was once a beginner. Keep learning and improving!"
	}

	return Summary{
		OverallScore:        score,
		ProgressTrend:       Trend(rate),
		Strengths:           strengths,
		AreasForImprovement: areas,
		Recommendations: []Recommendation{
			{Category: "Study Habits", Suggestion: habits, Priority: "high"},
			{
				Category:   "Time Management",
				Suggestion: "Use the Pomodoro technique for better focus and productivity",
				Priority:   "medium",
			},
		},
		MotivationalMessage: message,
		NextSteps: []string{
			"Review completed tasks and celebrate achievements",
			"Set specific goals for the upcoming week",
			"Identify areas that need more focus",
		},
	}
}

func (FallbackGenerator) suggestions(role user.Role, tasks []task.Task) Suggestions {
	var active int
	var hasAdvanced bool
	for _, t := range tasks {
		if t.Status != task.StatusDone {
			active++
		}
		if t.DifficultyLevel == task.DifficultyAdvanced {
			hasAdvanced = true
		}
	}

	schedule := StudySchedule{RecommendedDailyHours: 1.5, BestStudyTimes: []string{"evening", "weekend"}, BreakIntervals: 25}
	switch {
	case active > 5:
		schedule.RecommendedDailyHours = 3
	case active > 2:
		schedule.RecommendedDailyHours = 2
	}
	if role == user.RoleStudent {
		schedule.BestStudyTimes = []string{"morning", "afternoon"}
	}
	if hasAdvanced {
		schedule.BreakIntervals = 30
	}

	techniques := []Technique{
		{
			Name:        "Active Learning",
			Description: "Engage with material through practice, discussion, and application",
			BestFor:     "Skill development and deep understanding",
		},
		{
			Name:        "Spaced Repetition",
			Description: "Review material at increasing intervals to improve retention",
			BestFor:     "Memory retention and long-term learning",
		},
		{
			Name:        "Pomodoro Technique",
			Description: "Work in focused 25-minute intervals with 5-minute breaks",
			BestFor:     "Time management and maintaining focus",
		},
	}
	if hasAdvanced {
		techniques = append(techniques, Technique{
			Name:        "Feynman Technique",
			Description: "Explain concepts in simple terms as if teaching someone else",
			BestFor:     "Complex topics and deep understanding",
		})
	}

	return Suggestions{
		StudySchedule: schedule,
		Techniques:    techniques,
		Resources: []Resource{
			{
				Type:      "article",
				Title:     "Effective Study Techniques for Better Learning",
				Relevance: "Provides evidence-based study methods",
			},
			{
				Type:      "video",
				Title:     "Learning How to Learn - Coursera Course",
				Relevance: "Understanding how your brain learns and retains information",
			},
			{
				Type:      "book",
				Title:     "Make It Stick: The Science of Successful Learning",
				Relevance: "Research-backed strategies for effective learning",
			},
		},
		TimeManagementTips: []string{
			"Use the Pomodoro Technique for focused study sessions",
			"Set specific, measurable learning goals for each session",
			"Track your progress regularly to stay motivated",
			"Take regular breaks to maintain focus and prevent burnout",
			"Create a dedicated, distraction-free study environment",
			"Plan your most challenging tasks for when you have the most energy",
			"Use a calendar to schedule study sessions and stick to them",
		},
	}
}
