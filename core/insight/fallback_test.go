package insight

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

func ptr[T any](v T) *T { return &v }

func TestFallbackGenerator_breakdown(t *testing.T) {
	gen := NewFallbackGenerator()

	tests := []struct {
		name      string
		estimated *int
		wantTimes []int
		wantTotal int
	}{
		{name: "default estimate", wantTimes: []int{15, 30, 15}, wantTotal: 60},
		{name: "large estimate", estimated: ptr(480), wantTimes: []int{120, 240, 120}, wantTotal: 480},
		{name: "small estimate keeps minimums", estimated: ptr(20), wantTimes: []int{15, 30, 15}, wantTotal: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := gen.GenerateInsight(context.Background(), Prompt{
				Type:      TypeTaskBreakdown,
				Breakdown: &BreakdownInput{Task: task.Task{Title: "Go", EstimatedTime: tt.estimated}},
			})
			require.NoError(t, err)
			b, ok := content.(Breakdown)
			require.True(t, ok)
			require.Len(t, b.Subtasks, 3)
			for i, want := range tt.wantTimes {
				assert.Equal(t, want, b.Subtasks[i].EstimatedTime)
			}
			assert.Equal(t, tt.wantTotal, b.TotalEstimatedTime)
			assert.Len(t, b.StudyTips, 5)
		})
	}
}

func TestSummaryFormulas(t *testing.T) {
	tests := []struct {
		name      string
		in        SummaryInput
		wantRate  float64
		wantScore int
		wantTrend string
	}{
		{name: "no tasks", in: SummaryInput{}, wantRate: 0, wantScore: 50, wantTrend: "needs attention"},
		{name: "rate 70 is stable", in: SummaryInput{TotalTasks: 10, CompletedTasks: 7, AverageProgress: 80}, wantRate: 70, wantScore: 75, wantTrend: "stable"},
		{name: "rate 40 needs attention", in: SummaryInput{TotalTasks: 10, CompletedTasks: 4, AverageProgress: 40}, wantRate: 40, wantScore: 50, wantTrend: "needs attention"},
		{name: "improving, capped", in: SummaryInput{TotalTasks: 4, CompletedTasks: 4, AverageProgress: 100}, wantRate: 100, wantScore: 95, wantTrend: "improving"},
		{name: "half", in: SummaryInput{TotalTasks: 2, CompletedTasks: 1, AverageProgress: 70}, wantRate: 50, wantScore: 60, wantTrend: "stable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantRate, CompletionRate(tt.in), 1e-9)
			assert.Equal(t, tt.wantScore, OverallScore(tt.in))
			assert.Equal(t, tt.wantTrend, Trend(CompletionRate(tt.in)))
		})
	}
}

func TestFallbackGenerator_summary(t *testing.T) {
	gen := NewFallbackGenerator()

	s := gen.summary(SummaryInput{TotalTasks: 10, CompletedTasks: 9, AverageProgress: 90, TotalTimeSpent: 30})
	assert.Equal(t, "Excellent progress! You're doing great and staying on track.", s.MotivationalMessage)
	assert.Equal(t, "Task completion", s.Strengths[0])
	assert.Equal(t, "Time tracking", s.Strengths[1])
	assert.Equal(t, "Study efficiency", s.AreasForImprovement[0])

	s = gen.summary(SummaryInput{TotalTasks: 3})
	assert.Equal(t, "Every expert was once a beginner. Keep learning and improving!", s.MotivationalMessage)
	assert.Equal(t, "Getting started", s.Strengths[0])
	assert.Equal(t, "Task completion rate", s.AreasForImprovement[0])
	assert.Equal(t, "Focus on completing smaller tasks to build momentum", s.Recommendations[0].Suggestion)
}

func TestNewSummaryInput(t *testing.T) {
	tasks := []task.Task{{Status: task.StatusDone}, {Status: task.StatusInProgress}, {Status: task.StatusTodo}}
	logs := []task.Progress{{ProgressPercentage: 100, TimeSpent: ptr(30)}, {ProgressPercentage: 50}}

	assert.Equal(t, SummaryInput{
		TotalTasks:      3,
		CompletedTasks:  1,
		InProgressTasks: 1,
		AverageProgress: 75,
		TotalTimeSpent:  30,
	}, NewSummaryInput(tasks, logs))
}

func TestFallbackGenerator_suggestions(t *testing.T) {
	gen := NewFallbackGenerator()

	tests := []struct {
		name           string
		role           user.Role
		tasks          []task.Task
		wantHours      float64
		wantBreaks     int
		wantTimes      []string
		wantTechniques int
	}{
		{name: "student, no tasks", role: user.RoleStudent, wantHours: 1.5, wantBreaks: 25, wantTimes: []string{"morning", "afternoon"}, wantTechniques: 3},
		{
			name: "educator, 3 active", role: user.RoleEducator,
			tasks:     []task.Task{{Status: task.StatusTodo}, {Status: task.StatusTodo}, {Status: task.StatusInProgress}, {Status: task.StatusDone}},
			wantHours: 2, wantBreaks: 25, wantTimes: []string{"evening", "weekend"}, wantTechniques: 3,
		},
		{
			name: "6 active with advanced", role: user.RoleStudent,
			tasks: []task.Task{
				{Status: task.StatusTodo}, {Status: task.StatusTodo}, {Status: task.StatusTodo},
				{Status: task.StatusTodo}, {Status: task.StatusTodo}, {Status: task.StatusTodo, DifficultyLevel: task.DifficultyAdvanced},
			},
			wantHours: 3, wantBreaks: 30, wantTimes: []string{"morning", "afternoon"}, wantTechniques: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := gen.suggestions(tt.role, tt.tasks)
			assert.Equal(t, tt.wantHours, s.StudySchedule.RecommendedDailyHours)
			assert.Equal(t, tt.wantBreaks, s.StudySchedule.BreakIntervals)
			assert.Equal(t, tt.wantTimes, s.StudySchedule.BestStudyTimes)
			assert.Len(t, s.Techniques, tt.wantTechniques)
			assert.Len(t, s.Resources, 3)
			assert.Len(t, s.TimeManagementTips, 7)
		})
	}
}

func TestFallbackGenerator_invalidPrompt(t *testing.T) {
	_, err := NewFallbackGenerator().GenerateInsight(context.Background(), Prompt{Type: TypeTaskBreakdown})
	assert.Equal(t, ErrInvalidPrompt, errors.Cause(err))
	assert.Equal(t, "fallback", NewFallbackGenerator().Model())
}
