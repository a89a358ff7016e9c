package insight

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/task"
)

const (
	summaryPeriodDays = 30
	summaryTaskLimit  = 50
	summaryLogLimit   = 50
	suggestTaskLimit  = 20

	breakdownConfidence  = 0.85
	summaryConfidence    = 0.90
	suggestionConfidence = 0.80
)

type (
	Repository interface {
		CreateInsight(ctx context.Context, ins Insight, exec ...core.DBExecutor) (Insight, error)
		// QueryInsights returns the user's non-archived insights, newest first.
		QueryInsights(ctx context.Context, userID string, filter QueryFilter, exec ...core.DBExecutor) ([]Insight, error)
	}

	// TaskSource is the read side of the task service the generators feed on.
	TaskSource interface {
		Get(ctx context.Context, p task.Principal, id string) (task.Task, error)
		Query(ctx context.Context, p task.Principal, filter task.QueryFilter) ([]task.Task, core.Pagination, error)
		RecentProgressByUser(ctx context.Context, userID string, since time.Time, limit int) ([]task.Progress, error)
	}

	Service struct {
		repo   Repository
		tasks  TaskSource
		gen    Generator
		logger core.Logger
	}
)

func NewService(repo Repository, tasks TaskSource, gen Generator, logger core.Logger) *Service {
	return &Service{repo: repo, tasks: tasks, gen: gen, logger: logger}
}

// TaskBreakdown splits a task visible to p into study phases.
func (svc *Service) TaskBreakdown(ctx context.Context, p task.Principal, taskID string) (Content, error) {
	t, err := svc.tasks.Get(ctx, p, taskID)
	if err != nil {
		return nil, err
	}

	content, err := svc.gen.GenerateInsight(ctx, Prompt{Type: TypeTaskBreakdown, Breakdown: &BreakdownInput{Task: t}})
	if err != nil {
		return nil, errors.Wrap(err, "generating task breakdown")
	}

	svc.save(ctx, Insight{
		UserID: p.ID,
		TaskID: &t.ID,
		Type:   TypeTaskBreakdown,
		Title:  "Task Breakdown: " + t.Title,
	}, content, breakdownConfidence, nil)
	return content, nil
}

// ProgressSummary summarizes the tasks visible to p and the logs p wrote over the last 30 days.
func (svc *Service) ProgressSummary(ctx context.Context, p task.Principal) (Content, SummaryStats, error) {
	tasks, _, err := svc.tasks.Query(ctx, p, task.QueryFilter{Limit: summaryTaskLimit})
	if err != nil {
		return nil, SummaryStats{}, err
	}
	since := core.Now().AddDate(0, 0, -summaryPeriodDays)
	logs, err := svc.tasks.RecentProgressByUser(ctx, p.ID, since, summaryLogLimit)
	if err != nil {
		return nil, SummaryStats{}, err
	}

	in := NewSummaryInput(tasks, logs)
	content, err := svc.gen.GenerateInsight(ctx, Prompt{Type: TypeProgressSummary, Summary: &in})
	if err != nil {
		return nil, SummaryStats{}, errors.Wrap(err, "generating progress summary")
	}

	dataPoints := len(logs)
	svc.save(ctx, Insight{
		UserID: p.ID,
		Type:   TypeProgressSummary,
		Title:  "Weekly Progress Summary",
	}, content, summaryConfidence, &dataPoints)

	stats := SummaryStats{TasksAnalyzed: len(tasks), ProgressLogsAnalyzed: len(logs), PeriodDays: summaryPeriodDays}
	return content, stats, nil
}

// StudySuggestions recommends a study routine from the tasks visible to p.
func (svc *Service) StudySuggestions(ctx context.Context, p task.Principal) (Content, error) {
	tasks, _, err := svc.tasks.Query(ctx, p, task.QueryFilter{Limit: suggestTaskLimit})
	if err != nil {
		return nil, err
	}

	content, err := svc.gen.GenerateInsight(ctx, Prompt{
		Type:       TypeStudySuggestion,
		Suggestion: &SuggestionInput{Role: p.Role, Tasks: tasks},
	})
	if err != nil {
		return nil, errors.Wrap(err, "generating study suggestions")
	}

	svc.save(ctx, Insight{
		UserID: p.ID,
		Type:   TypeStudySuggestion,
		Title:  "Personalized Study Suggestions",
	}, content, suggestionConfidence, nil)
	return content, nil
}

// ListInsights returns the insights stored for p.
func (svc *Service) ListInsights(ctx context.Context, p task.Principal, filter QueryFilter) ([]Insight, error) {
	filter.Clean()
	insights, err := svc.repo.QueryInsights(ctx, p.ID, filter)
	return insights, errors.Wrap(err, "querying insights")
}

// save persists a generated insight. Failures are logged and never reach the caller.
func (svc *Service) save(ctx context.Context, ins Insight, content Content, confidence float64, dataPoints *int) {
	raw, err := json.Marshal(content)
	if err != nil {
		svc.logger.Warn("Failed to save AI insight", err, map[string]interface{}{"insightType": ins.Type})
		return
	}

	now := core.Now()
	ins.Content = raw
	ins.ConfidenceScore = &confidence
	ins.Metadata = Metadata{
		Model:         svc.gen.Model(),
		PromptVersion: promptVersion,
		GeneratedAt:   now,
		DataPoints:    dataPoints,
	}
	ins.CreatedAt = now
	ins.UpdatedAt = now

	if _, err = svc.repo.CreateInsight(ctx, ins); err != nil {
		svc.logger.Warn("Failed to save AI insight", err, map[string]interface{}{"insightType": ins.Type})
	}
}
