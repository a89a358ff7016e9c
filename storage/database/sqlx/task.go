package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

var (
	taskColumns = []string{
		"t.id", "t.title", "t.description", "t.priority", "t.status", "t.due_date", "t.estimated_time",
		"t.actual_time", "t.progress_percentage", "t.tags", "t.difficulty_level", "t.creator_id", "t.assignee_id",
		"t.parent_task_id", "t.created_at", "t.updated_at", "t.archived_at",
	}

	taskOrderColumns = map[string]string{
		"created_at": "t.created_at",
		"updated_at": "t.updated_at",
		"due_date":   "t.due_date",
		"priority":   "t.priority",
		"status":     "t.status",
		"title":      "t.title",
	}
)

type taskRow struct {
	ID                 string      `db:"id"`
	Title              string      `db:"title"`
	Description        null.String `db:"description"`
	Priority           string      `db:"priority"`
	Status             string      `db:"status"`
	DueDate            null.Time   `db:"due_date"`
	EstimatedTime      null.Int    `db:"estimated_time"`
	ActualTime         null.Int    `db:"actual_time"`
	ProgressPercentage int         `db:"progress_percentage"`
	Tags               string      `db:"tags"`
	DifficultyLevel    string      `db:"difficulty_level"`
	CreatorID          string      `db:"creator_id"`
	AssigneeID         null.String `db:"assignee_id"`
	ParentTaskID       null.String `db:"parent_task_id"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
	ArchivedAt         null.Time   `db:"archived_at"`
}

func (row taskRow) toTask() (task.Task, error) {
	tags := make([]string, 0)
	if err := json.Unmarshal([]byte(row.Tags), &tags); err != nil {
		return task.Task{}, core.NewDecodeError("learning_tasks.tags", err)
	}
	return task.Task{
		ID:                 row.ID,
		Title:              row.Title,
		Description:        row.Description.Ptr(),
		Priority:           task.Priority(row.Priority),
		Status:             task.Status(row.Status),
		DueDate:            row.DueDate.Ptr(),
		EstimatedTime:      row.EstimatedTime.Ptr(),
		ActualTime:         row.ActualTime.Ptr(),
		ProgressPercentage: row.ProgressPercentage,
		Tags:               tags,
		DifficultyLevel:    task.Difficulty(row.DifficultyLevel),
		CreatorID:          row.CreatorID,
		AssigneeID:         row.AssigneeID.Ptr(),
		ParentTaskID:       row.ParentTaskID.Ptr(),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
		ArchivedAt:         row.ArchivedAt.Ptr(),
	}, nil
}

func toTasks(rows []taskRow) ([]task.Task, error) {
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

// ScopePredicate renders task.Scope over the learning_tasks table aliased as "t".
func ScopePredicate(scope task.Scope) sq.Sqlizer {
	preds := sq.And{}
	if !scope.IncludeArchived {
		preds = append(preds, sq.Eq{"t.archived_at": nil})
	}

	switch scope.Role {
	case user.RoleAdmin:
	case user.RoleEducator:
		preds = append(preds, sq.Eq{"t.creator_id": scope.UserID})
	case user.RoleStudent:
		preds = append(preds, sq.Or{
			sq.Eq{"t.assignee_id": scope.UserID},
			sq.Eq{"t.creator_id": scope.UserID},
			sq.And{
				sq.Eq{"t.assignee_id": nil},
				sq.Expr("t.creator_id IN (SELECT u.id FROM users u WHERE u.role = ?)", string(user.RoleEducator)),
			},
		})
	default:
		preds = append(preds, sq.Expr("false"))
	}
	return preds
}

func filterPredicate(filter task.QueryFilter) sq.Eq {
	eq := sq.Eq{}
	if filter.Status != "" {
		eq["t.status"] = string(filter.Status)
	}
	if filter.Priority != "" {
		eq["t.priority"] = string(filter.Priority)
	}
	return eq
}

type taskRepository struct {
	repository
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(exec core.DBExecutor) *taskRepository {
	return &taskRepository{repository{exec: exec}}
}

func (repo taskRepository) CreateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "encoding tags")
	}
	t.ID = uuid.New().String()
	t.Tags = append([]string{}, t.Tags...)

	qb := psql.Insert("learning_tasks").
		SetMap(map[string]interface{}{
			"id":                  t.ID,
			"title":               t.Title,
			"description":         null.StringFromPtr(t.Description),
			"priority":            string(t.Priority),
			"status":              string(t.Status),
			"due_date":            null.TimeFromPtr(t.DueDate),
			"estimated_time":      null.IntFromPtr(t.EstimatedTime),
			"actual_time":         null.IntFromPtr(t.ActualTime),
			"progress_percentage": t.ProgressPercentage,
			"tags":                tags,
			"difficulty_level":    string(t.DifficultyLevel),
			"creator_id":          t.CreatorID,
			"assignee_id":         null.StringFromPtr(t.AssigneeID),
			"parent_task_id":      null.StringFromPtr(t.ParentTaskID),
			"created_at":          t.CreatedAt,
			"updated_at":          t.UpdatedAt,
		})
	if _, err = execute(ctx, repo.getExec(exec), qb); err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return t, nil
}

func (repo taskRepository) QueryTasks(
	ctx context.Context,
	scope task.Scope,
	filter task.QueryFilter,
	exec ...core.DBExecutor,
) ([]task.Task, int, error) {
	exe := repo.getExec(exec)
	where := sq.And{ScopePredicate(scope), filterPredicate(filter)}

	total, err := count(ctx, exe, psql.Select("COUNT(*)").From("learning_tasks t").Where(where))
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting tasks")
	}

	qb := psql.Select(taskColumns...).
		From("learning_tasks t").
		Where(where).
		OrderBy(orderBy(filter.Ordering, taskOrderColumns)...).
		OrderBy("t.id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	var rows []taskRow
	if err = selectAll(ctx, exe, qb, &rows); err != nil {
		return nil, 0, errors.Wrap(err, "querying tasks")
	}
	tasks, err := toTasks(rows)
	return tasks, total, err
}

func (repo taskRepository) GetTask(ctx context.Context, id string, scope task.Scope, exec ...core.DBExecutor) (task.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return task.Task{}, task.ErrNotFound
	}
	qb := psql.Select(taskColumns...).
		From("learning_tasks t").
		Where(sq.Eq{"t.id": id}).
		Where(ScopePredicate(scope)).
		Limit(1)

	var rows []taskRow
	if err := selectAll(ctx, repo.getExec(exec), qb, &rows); err != nil {
		return task.Task{}, errors.Wrap(err, "finding task")
	}
	if len(rows) == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return rows[0].toTask()
}

func (repo taskRepository) UpdateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "encoding tags")
	}
	qb := psql.Update("learning_tasks").
		SetMap(map[string]interface{}{
			"title":            t.Title,
			"description":      null.StringFromPtr(t.Description),
			"priority":         string(t.Priority),
			"status":           string(t.Status),
			"due_date":         null.TimeFromPtr(t.DueDate),
			"estimated_time":   null.IntFromPtr(t.EstimatedTime),
			"actual_time":      null.IntFromPtr(t.ActualTime),
			"tags":             tags,
			"difficulty_level": string(t.DifficultyLevel),
			"assignee_id":      null.StringFromPtr(t.AssigneeID),
			"updated_at":       t.UpdatedAt,
		}).
		Where(sq.Eq{"id": t.ID})

	res, err := execute(ctx, repo.getExec(exec), qb)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo taskRepository) ArchiveTask(ctx context.Context, id string, at time.Time, exec ...core.DBExecutor) error {
	qb := psql.Update("learning_tasks").
		Set("archived_at", at).
		Set("updated_at", at).
		Where(sq.Eq{"id": id, "archived_at": nil})

	res, err := execute(ctx, repo.getExec(exec), qb)
	if err != nil {
		return errors.Wrap(err, "archiving task")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "archiving task")
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (repo taskRepository) SetTaskProgress(
	ctx context.Context,
	id string,
	status *task.Status,
	pct int,
	at time.Time,
	exec ...core.DBExecutor,
) error {
	qb := psql.Update("learning_tasks").
		Set("progress_percentage", pct).
		Set("updated_at", at).
		Where(sq.Eq{"id": id})
	if status != nil {
		qb = qb.Set("status", string(*status))
	}
	_, err := execute(ctx, repo.getExec(exec), qb)
	return errors.Wrap(err, "setting task progress")
}
