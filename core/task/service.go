package task

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("Task not found")
	ErrForbidden        = errors.New("You do not have permission to modify this task")
	ErrNoFieldsToUpdate = errors.New("No fields to update")
	ErrInvalidAssignee  = errors.New("assignee does not exist")
	ErrInvalidParent    = errors.New("parent task does not exist")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
		// QueryTasks returns one page of the tasks inside scope, and the total count of the unpaginated result.
		QueryTasks(ctx context.Context, scope Scope, filter QueryFilter, exec ...core.DBExecutor) ([]Task, int, error)
		// GetTask returns ErrNotFound when the task does not exist or is outside scope.
		GetTask(ctx context.Context, id string, scope Scope, exec ...core.DBExecutor) (Task, error)
		UpdateTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
		ArchiveTask(ctx context.Context, id string, at time.Time, exec ...core.DBExecutor) error
		// SetTaskProgress stores pct on the task, and status when it is not nil.
		SetTaskProgress(ctx context.Context, id string, status *Status, pct int, at time.Time, exec ...core.DBExecutor) error
	}

	ProgressRepository interface {
		CreateProgress(ctx context.Context, pr Progress, exec ...core.DBExecutor) (Progress, error)
		// QueryProgress returns the non-archived logs of a task, newest first.
		QueryProgress(ctx context.Context, taskID string, exec ...core.DBExecutor) ([]Progress, error)
		// QueryUserProgress returns up to limit logs written by userID since the given time, newest first.
		QueryUserProgress(ctx context.Context, userID string, since time.Time, limit int, exec ...core.DBExecutor) ([]Progress, error)
	}

	Service struct {
		tx           core.Transactor
		repo         Repository
		progressRepo ProgressRepository
		usrRepo      user.Repository
		policy       TransitionPolicy
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	progressRepo ProgressRepository,
	usrRepo user.Repository,
	conf *core.Config,
) *Service {
	return &Service{
		tx:           tx,
		repo:         repo,
		progressRepo: progressRepo,
		usrRepo:      usrRepo,
		policy:       PolicyFromConfig(conf),
	}
}

func (svc *Service) checkAssignee(ctx context.Context, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}
	assignee, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: *assigneeID})
	if err == nil && !assignee.IsArchived() {
		return nil
	}
	if err == nil || err == user.ErrNotFound {
		return core.NewValidationError(ErrInvalidAssignee, core.FieldError{Field: "assigneeId", Error: ErrInvalidAssignee.Error()})
	}
	return pkgerrors.Wrap(err, "finding assignee")
}

// Create stores a new Task created by p. Only educators may create tasks.
func (svc *Service) Create(ctx context.Context, p Principal, nt NewTask) (Task, error) {
	if !CanCreate(p) {
		return Task{}, ErrForbidden
	}
	if err := svc.checkAssignee(ctx, nt.AssigneeID); err != nil {
		return Task{}, err
	}
	if nt.ParentTaskID != nil {
		if _, err := svc.repo.GetTask(ctx, *nt.ParentTaskID, ScopeFor(p)); err != nil {
			if err == ErrNotFound {
				return Task{}, core.NewValidationError(ErrInvalidParent, core.FieldError{Field: "parentTaskId", Error: ErrInvalidParent.Error()})
			}
			return Task{}, pkgerrors.Wrap(err, "finding parent task")
		}
	}

	now := core.Now()
	t := Task{
		Title:           nt.Title,
		Description:     nt.Description,
		Priority:        nt.Priority,
		Status:          nt.Status,
		DueDate:         nt.DueDate,
		EstimatedTime:   nt.EstimatedTime,
		Tags:            nt.Tags,
		DifficultyLevel: nt.DifficultyLevel,
		CreatorID:       p.ID,
		AssigneeID:      nt.AssigneeID,
		ParentTaskID:    nt.ParentTaskID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	t, err := svc.repo.CreateTask(ctx, t)
	return t, pkgerrors.Wrap(err, "creating task")
}

// Query returns the page of tasks visible to p and the pagination it was cut with.
func (svc *Service) Query(ctx context.Context, p Principal, filter QueryFilter) ([]Task, core.Pagination, error) {
	filter.Clean()
	tasks, total, err := svc.repo.QueryTasks(ctx, ScopeFor(p, filter.IncludeArchived), filter)
	if err != nil {
		return nil, core.Pagination{}, pkgerrors.Wrap(err, "querying tasks")
	}
	return tasks, core.Pagination{Limit: filter.Limit, Offset: filter.Offset, Total: total}, nil
}

// Get returns the task visible to p with the given id.
func (svc *Service) Get(ctx context.Context, p Principal, id string) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id, ScopeFor(p))
	if err != nil && err != ErrNotFound {
		return Task{}, pkgerrors.Wrap(err, "finding task")
	}
	return t, err
}

// Update applies ut to the task with the given id.
func (svc *Service) Update(ctx context.Context, p Principal, id string, ut UpdateTask) (Task, error) {
	t, err := svc.Get(ctx, p, id)
	if err != nil {
		return Task{}, err
	}
	if !CanUpdate(p, t) {
		return Task{}, ErrForbidden
	}
	if ut.AssigneeID.Valid {
		if err = svc.checkAssignee(ctx, ut.AssigneeID.Ptr()); err != nil {
			return Task{}, err
		}
	}

	t = ut.apply(t)
	t.UpdatedAt = core.Now()
	t, err = svc.repo.UpdateTask(ctx, t)
	return t, pkgerrors.Wrap(err, "updating task")
}

// Archive soft-deletes the task with the given id.
func (svc *Service) Archive(ctx context.Context, p Principal, id string) error {
	t, err := svc.Get(ctx, p, id)
	if err != nil {
		return err
	}
	if !CanDelete(p, t) {
		return ErrForbidden
	}
	return pkgerrors.Wrap(svc.repo.ArchiveTask(ctx, t.ID, core.Now()), "archiving task")
}

// SubmitProgress logs progress on a visible task and moves its status when p may modify it.
// The log and the task update are written in one transaction.
func (svc *Service) SubmitProgress(ctx context.Context, p Principal, taskID string, np NewProgress) (Progress, error) {
	var pr Progress
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		execs := executors(exec)

		t, err := svc.repo.GetTask(ctx, taskID, ScopeFor(p), execs...)
		if err != nil {
			return err
		}

		now := core.Now()
		pr, err = svc.progressRepo.CreateProgress(ctx, Progress{
			TaskID:             t.ID,
			UserID:             p.ID,
			ProgressPercentage: *np.ProgressPercentage,
			Notes:              np.Notes,
			TimeSpent:          np.TimeSpent,
			CompletionEvidence: np.CompletionEvidence,
			CreatedAt:          now,
		}, execs...)
		if err != nil {
			return pkgerrors.Wrap(err, "creating progress log")
		}

		if !CanUpdate(p, t) {
			return nil
		}
		var status *Status
		if next, ok := ProgressTransition(svc.policy, t.Status, pr.ProgressPercentage); ok {
			status = &next
		}
		return pkgerrors.Wrap(
			svc.repo.SetTaskProgress(ctx, t.ID, status, pr.ProgressPercentage, now, execs...),
			"updating task progress",
		)
	})
	if err != nil {
		return Progress{}, err
	}
	return pr, nil
}

// ListProgress returns the progress logs of a visible task, newest first.
func (svc *Service) ListProgress(ctx context.Context, p Principal, taskID string) ([]Progress, error) {
	if _, err := svc.Get(ctx, p, taskID); err != nil {
		return nil, err
	}
	logs, err := svc.progressRepo.QueryProgress(ctx, taskID)
	return logs, pkgerrors.Wrap(err, "querying progress logs")
}

// RecentProgressByUser returns up to limit of the user's own logs written since the given time.
func (svc *Service) RecentProgressByUser(ctx context.Context, userID string, since time.Time, limit int) ([]Progress, error) {
	logs, err := svc.progressRepo.QueryUserProgress(ctx, userID, since, limit)
	return logs, pkgerrors.Wrap(err, "querying user progress logs")
}

func executors(exec core.DBExecutor) []core.DBExecutor {
	if exec == nil {
		return nil
	}
	return []core.DBExecutor{exec}
}
