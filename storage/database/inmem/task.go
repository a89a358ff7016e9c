package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

type taskRepository struct {
	db *DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db}
}

// copyTask detaches t from the stored row.
func copyTask(t task.Task) task.Task {
	t.Tags = append([]string{}, t.Tags...)
	return t
}

// visible must be called with the lock held.
func (repo *taskRepository) visible(t *task.Task, scope task.Scope) bool {
	var creatorRole user.Role
	if creator, ok := repo.db.users[t.CreatorID]; ok {
		creatorRole = creator.Role
	}
	return scope.Allows(*t, creatorRole)
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task, _ ...core.DBExecutor) (task.Task, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t.ID = uuid.New().String()
	stored := copyTask(t)
	repo.db.tasks[t.ID] = &stored
	return copyTask(t), nil
}

func (repo *taskRepository) QueryTasks(
	_ context.Context,
	scope task.Scope,
	filter task.QueryFilter,
	_ ...core.DBExecutor,
) ([]task.Task, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	matched := make([]task.Task, 0)
	for _, t := range repo.db.tasks {
		if !repo.visible(t, scope) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		matched = append(matched, copyTask(*t))
	}
	sortTasks(matched, filter.Ordering)

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

func sortTasks(tasks []task.Task, ordering []core.DBOrdering) {
	sort.SliceStable(tasks, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareTasks(tasks[i], tasks[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func compareTasks(a, b task.Task, field string) int {
	switch field {
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "due_date":
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	case "priority":
		return strings.Compare(string(a.Priority), string(b.Priority))
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "title":
		return strings.Compare(a.Title, b.Title)
	}
	return 0
}

func (repo *taskRepository) GetTask(_ context.Context, id string, scope task.Scope, _ ...core.DBExecutor) (task.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	t, ok := repo.db.tasks[id]
	if !ok || !repo.visible(t, scope) {
		return task.Task{}, task.ErrNotFound
	}
	return copyTask(*t), nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task, _ ...core.DBExecutor) (task.Task, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.tasks[t.ID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	// only editable fields
	orig.Title = t.Title
	orig.Description = t.Description
	orig.Priority = t.Priority
	orig.Status = t.Status
	orig.DueDate = t.DueDate
	orig.EstimatedTime = t.EstimatedTime
	orig.ActualTime = t.ActualTime
	orig.Tags = append([]string{}, t.Tags...)
	orig.DifficultyLevel = t.DifficultyLevel
	orig.AssigneeID = t.AssigneeID
	orig.UpdatedAt = t.UpdatedAt
	return copyTask(*orig), nil
}

func (repo *taskRepository) ArchiveTask(_ context.Context, id string, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t, ok := repo.db.tasks[id]
	if !ok || t.IsArchived() {
		return task.ErrNotFound
	}
	t.ArchivedAt = &at
	t.UpdatedAt = at
	return nil
}

func (repo *taskRepository) SetTaskProgress(
	_ context.Context,
	id string,
	status *task.Status,
	pct int,
	at time.Time,
	_ ...core.DBExecutor,
) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t, ok := repo.db.tasks[id]
	if !ok {
		return task.ErrNotFound
	}
	t.ProgressPercentage = pct
	if status != nil {
		t.Status = *status
	}
	t.UpdatedAt = at
	return nil
}
