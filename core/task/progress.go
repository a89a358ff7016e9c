package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
)

// Progress is an append-only progress observation on a Task.
type Progress struct {
	ID                 string     `json:"id"`
	TaskID             string     `json:"taskId"`
	UserID             string     `json:"userId"`
	ProgressPercentage int        `json:"progressPercentage"`
	Notes              *string    `json:"notes"`
	TimeSpent          *int       `json:"timeSpent"`
	CompletionEvidence *string    `json:"completionEvidence"`
	CreatedAt          time.Time  `json:"createdAt"`
	ArchivedAt         *time.Time `json:"-"`
}

// NewProgress contains information needed to log progress on a Task.
type NewProgress struct {
	ProgressPercentage *int    `json:"progressPercentage" validate:"required,min=0,max=100"`
	Notes              *string `json:"notes" validate:"omitempty,max=5000"`
	TimeSpent          *int    `json:"timeSpent" validate:"omitempty,min=0"`
	CompletionEvidence *string `json:"completionEvidence" validate:"omitempty,httpurl"`
}

func (np *NewProgress) Validate(validate *validator.Validate) error {
	if np.CompletionEvidence != nil {
		evidence := core.CleanString(*np.CompletionEvidence)
		if evidence == "" {
			np.CompletionEvidence = nil
		} else {
			np.CompletionEvidence = &evidence
		}
	}
	return validate.Struct(np)
}

// TransitionPolicy decides whether a progress log may move a closed (DONE or CANCELLED) task.
type TransitionPolicy int

const (
	// TransitionUnconditional applies the progress rule whatever the current status is,
	// so a stray log revives a CANCELLED or DONE task.
	TransitionUnconditional TransitionPolicy = iota
	// TransitionKeepClosed never moves a DONE or CANCELLED task.
	TransitionKeepClosed
)

func PolicyFromConfig(conf *core.Config) TransitionPolicy {
	if conf.Tasks.ProgressRevivesClosed {
		return TransitionUnconditional
	}
	return TransitionKeepClosed
}

// ProgressTransition returns the status a task moves to when progress pct is logged against it.
//
//	pct == 100     -> DONE
//	0 < pct < 100  -> IN_PROGRESS
//	pct == 0       -> unchanged
//
// ok is false when the status must not be written.
func ProgressTransition(policy TransitionPolicy, current Status, pct int) (next Status, ok bool) {
	switch {
	case pct >= 100:
		next = StatusDone
	case pct > 0:
		next = StatusInProgress
	default:
		return current, false
	}
	if policy == TransitionKeepClosed && (current == StatusDone || current == StatusCancelled) {
		return current, false
	}
	return next, true
}
