package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
)

type (
	Priority   string
	Status     string
	Difficulty string
)

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"

	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusCancelled  Status = "CANCELLED"

	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

var (
	Priorities   = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	Statuses     = []Status{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}
	Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description"`
	Priority           Priority   `json:"priority"`
	Status             Status     `json:"status"`
	DueDate            *time.Time `json:"dueDate"`
	EstimatedTime      *int       `json:"estimatedTime"`
	ActualTime         *int       `json:"actualTime"`
	ProgressPercentage int        `json:"progressPercentage"`
	Tags               []string   `json:"tags"`
	DifficultyLevel    Difficulty `json:"difficultyLevel"`
	CreatorID          string     `json:"creatorId"`
	AssigneeID         *string    `json:"assigneeId"`
	ParentTaskID       *string    `json:"parentTaskId"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	ArchivedAt         *time.Time `json:"archivedAt"`
}

func (t Task) IsArchived() bool { return t.ArchivedAt != nil }

func (t Task) IsUnassigned() bool { return t.AssigneeID == nil || *t.AssigneeID == "" }

func (t Task) IsAssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title           string     `json:"title" validate:"required,max=500"`
	Description     *string    `json:"description"`
	Priority        Priority   `json:"priority" validate:"omitempty,priority"`
	Status          Status     `json:"status" validate:"omitempty,taskstatus"`
	DueDate         *time.Time `json:"dueDate"`
	EstimatedTime   *int       `json:"estimatedTime" validate:"omitempty,min=1,max=10080"`
	Tags            []string   `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	DifficultyLevel Difficulty `json:"difficultyLevel" validate:"omitempty,difficulty"`
	AssigneeID      *string    `json:"assigneeId" validate:"omitempty,uuid"`
	ParentTaskID    *string    `json:"parentTaskId" validate:"omitempty,uuid"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Tags = cleanTags(nt.Tags)
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	if nt.Status == "" {
		nt.Status = StatusTodo
	}
	if nt.DifficultyLevel == "" {
		nt.DifficultyLevel = DifficultyIntermediate
	}
	if nt.AssigneeID != nil && core.CleanString(*nt.AssigneeID) == "" {
		nt.AssigneeID = nil
	}
	if nt.ParentTaskID != nil && core.CleanString(*nt.ParentTaskID) == "" {
		nt.ParentTaskID = nil
	}
	return validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
// AssigneeID and DueDate distinguish "absent" from an explicit null, which clears them.
type UpdateTask struct {
	Title           *string             `json:"title" validate:"omitempty,min=1,max=255"`
	Description     *string             `json:"description"`
	Priority        *Priority           `json:"priority" validate:"omitempty,priority"`
	Status          *Status             `json:"status" validate:"omitempty,taskstatus"`
	DueDate         Optional[time.Time] `json:"dueDate"`
	AssigneeID      Optional[string]    `json:"assigneeId" validate:"omitempty,uuid"`
	EstimatedTime   *int                `json:"estimatedTime" validate:"omitempty,min=1,max=10080"`
	ActualTime      *int                `json:"actualTime" validate:"omitempty,min=0"`
	Tags            *[]string           `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	DifficultyLevel *Difficulty         `json:"difficultyLevel" validate:"omitempty,difficulty"`
}

// IsEmpty reports whether no field was provided.
func (ut *UpdateTask) IsEmpty() bool {
	return ut.Title == nil && ut.Description == nil && ut.Priority == nil && ut.Status == nil &&
		!ut.DueDate.Set && !ut.AssigneeID.Set && ut.EstimatedTime == nil && ut.ActualTime == nil &&
		ut.Tags == nil && ut.DifficultyLevel == nil
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	if ut.IsEmpty() {
		return core.NewValidationError(ErrNoFieldsToUpdate)
	}
	if ut.Title != nil {
		title := core.CleanString(*ut.Title)
		ut.Title = &title
	}
	if ut.Tags != nil {
		tags := cleanTags(*ut.Tags)
		ut.Tags = &tags
	}
	return validate.Struct(ut)
}

// apply copies the provided fields of ut onto t.
func (ut UpdateTask) apply(t Task) Task {
	if ut.Title != nil {
		t.Title = *ut.Title
	}
	if ut.Description != nil {
		t.Description = ut.Description
	}
	if ut.Priority != nil {
		t.Priority = *ut.Priority
	}
	if ut.Status != nil {
		t.Status = *ut.Status
	}
	if ut.DueDate.Set {
		t.DueDate = ut.DueDate.Ptr()
	}
	if ut.AssigneeID.Set {
		t.AssigneeID = ut.AssigneeID.Ptr()
	}
	if ut.EstimatedTime != nil {
		t.EstimatedTime = ut.EstimatedTime
	}
	if ut.ActualTime != nil {
		t.ActualTime = ut.ActualTime
	}
	if ut.Tags != nil {
		t.Tags = *ut.Tags
	}
	if ut.DifficultyLevel != nil {
		t.DifficultyLevel = *ut.DifficultyLevel
	}
	return t
}

type QueryFilter struct {
	Status          Status            `query:"status" json:"status" validate:"omitempty,taskstatus"`
	Priority        Priority          `query:"priority" json:"priority" validate:"omitempty,priority"`
	Limit           int               `query:"limit" json:"limit" validate:"min=0,max=100"`
	Offset          int               `query:"offset" json:"offset" validate:"min=0"`
	IncludeArchived bool              `query:"includeArchived" json:"includeArchived"`
	Ordering        []core.DBOrdering `query:"-" json:"-"`
}

func (qf *QueryFilter) Validate(validate *validator.Validate) error {
	if err := validate.Struct(qf); err != nil {
		return err
	}
	qf.Clean()
	return nil
}

// Clean applies the defaults of unset fields.
func (qf *QueryFilter) Clean() {
	if qf.Limit <= 0 {
		qf.Limit = defaultLimit
	}
	if qf.Limit > maxLimit {
		qf.Limit = maxLimit
	}
	if qf.Offset < 0 {
		qf.Offset = 0
	}
	if len(qf.Ordering) == 0 {
		qf.Ordering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
	}
}

func cleanTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = core.CleanString(tag)
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	return cleaned
}
