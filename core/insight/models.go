package insight

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

type Type string

const (
	TypeTaskBreakdown       Type = "TASK_BREAKDOWN"
	TypeProgressSummary     Type = "PROGRESS_SUMMARY"
	TypeStudySuggestion     Type = "STUDY_SUGGESTION"
	TypePerformanceAnalysis Type = "PERFORMANCE_ANALYSIS"
)

var Types = []Type{TypeTaskBreakdown, TypeProgressSummary, TypeStudySuggestion, TypePerformanceAnalysis}

const (
	defaultLimit = 20
	maxLimit     = 100

	modelFallback = "fallback"
	promptVersion = "1.0"
)

// Insight is a persisted generator output. Insights are never updated once stored.
type Insight struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	TaskID          *string         `json:"taskId"`
	Type            Type            `json:"insightType"`
	Title           string          `json:"title"`
	Content         json.RawMessage `json:"content"`
	Metadata        Metadata        `json:"metadata"`
	ConfidenceScore *float64        `json:"confidenceScore"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ArchivedAt      *time.Time      `json:"-"`
}

type Metadata struct {
	Model         string    `json:"model"`
	PromptVersion string    `json:"promptVersion"`
	GeneratedAt   time.Time `json:"generatedAt"`
	DataPoints    *int      `json:"dataPoints,omitempty"`
}

// Content is the typed payload of an insight.
type Content interface {
	InsightType() Type
}

type (
	Subtask struct {
		Title              string   `json:"title"`
		Description        string   `json:"description"`
		EstimatedTime      int      `json:"estimatedTime"`
		LearningObjectives []string `json:"learningObjectives"`
		Resources          []string `json:"resources"`
		SuccessCriteria    string   `json:"successCriteria"`
	}

	Breakdown struct {
		Subtasks           []Subtask `json:"subtasks"`
		TotalEstimatedTime int       `json:"totalEstimatedTime"`
		StudyTips          []string  `json:"studyTips"`
		Prerequisites      []string  `json:"prerequisites"`
	}

	Recommendation struct {
		Category   string `json:"category"`
		Suggestion string `json:"suggestion"`
		Priority   string `json:"priority"`
	}

	Summary struct {
		OverallScore        int              `json:"overallScore"`
		ProgressTrend       string           `json:"progressTrend"`
		Strengths           []string         `json:"strengths"`
		AreasForImprovement []string         `json:"areasForImprovement"`
		Recommendations     []Recommendation `json:"recommendations"`
		MotivationalMessage string           `json:"motivationalMessage"`
		NextSteps           []string         `json:"nextSteps"`
	}

	StudySchedule struct {
		RecommendedDailyHours float64  `json:"recommendedDailyHours"`
		BestStudyTimes        []string `json:"bestStudyTimes"`
		BreakIntervals        int      `json:"breakIntervals"`
	}

	Technique struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		BestFor     string `json:"bestFor"`
	}

	Resource struct {
		Type      string `json:"type"`
		Title     string `json:"title"`
		URL       string `json:"url"`
		Relevance string `json:"relevance"`
	}

	Suggestions struct {
		StudySchedule      StudySchedule `json:"studySchedule"`
		Techniques         []Technique   `json:"techniques"`
		Resources          []Resource    `json:"resources"`
		TimeManagementTips []string      `json:"timeManagementTips"`
	}
)

func (Breakdown) InsightType() Type   { return TypeTaskBreakdown }
func (Summary) InsightType() Type     { return TypeProgressSummary }
func (Suggestions) InsightType() Type { return TypeStudySuggestion }

type (
	BreakdownInput struct {
		Task task.Task
	}

	SummaryInput struct {
		TotalTasks      int
		CompletedTasks  int
		InProgressTasks int
		AverageProgress float64
		TotalTimeSpent  int
	}

	SuggestionInput struct {
		Role  user.Role
		Tasks []task.Task
	}

	// Prompt is a generation request. Exactly one input matching Type is set.
	Prompt struct {
		Type       Type
		Breakdown  *BreakdownInput
		Summary    *SummaryInput
		Suggestion *SuggestionInput
	}
)

// NewSummaryInput aggregates the tasks and progress logs a summary is computed from.
func NewSummaryInput(tasks []task.Task, logs []task.Progress) SummaryInput {
	in := SummaryInput{TotalTasks: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case task.StatusDone:
			in.CompletedTasks++
		case task.StatusInProgress:
			in.InProgressTasks++
		}
	}
	if len(logs) > 0 {
		sum := 0
		for _, l := range logs {
			sum += l.ProgressPercentage
			if l.TimeSpent != nil {
				in.TotalTimeSpent += *l.TimeSpent
			}
		}
		in.AverageProgress = float64(sum) / float64(len(logs))
	}
	return in
}

// SummaryStats describes the data a progress summary was computed from.
type SummaryStats struct {
	TasksAnalyzed        int `json:"tasksAnalyzed"`
	ProgressLogsAnalyzed int `json:"progressLogsAnalyzed"`
	PeriodDays           int `json:"periodDays"`
}

type BreakdownRequest struct {
	TaskID string `json:"taskId" validate:"required"`
}

func (br *BreakdownRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(br)
}

type QueryFilter struct {
	Type  Type `query:"type" json:"type" validate:"omitempty,insighttype"`
	Limit int  `query:"limit" json:"limit" validate:"min=0,max=100"`
}

func (qf *QueryFilter) Validate(validate *validator.Validate) error {
	if err := validate.Struct(qf); err != nil {
		return err
	}
	qf.Clean()
	return nil
}

func (qf *QueryFilter) Clean() {
	if qf.Limit <= 0 {
		qf.Limit = defaultLimit
	}
	if qf.Limit > maxLimit {
		qf.Limit = maxLimit
	}
}
