package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/task"
)

var progressColumns = []string{
	"id", "task_id", "user_id", "progress", "notes", "time_spent", "completion_evidence", "created_at", "archived_at",
}

type progressRow struct {
	ID                 string      `db:"id"`
	TaskID             string      `db:"task_id"`
	UserID             string      `db:"user_id"`
	Progress           int         `db:"progress"`
	Notes              null.String `db:"notes"`
	TimeSpent          null.Int    `db:"time_spent"`
	CompletionEvidence null.String `db:"completion_evidence"`
	CreatedAt          time.Time   `db:"created_at"`
	ArchivedAt         null.Time   `db:"archived_at"`
}

func (row progressRow) toProgress() task.Progress {
	return task.Progress{
		ID:                 row.ID,
		TaskID:             row.TaskID,
		UserID:             row.UserID,
		ProgressPercentage: row.Progress,
		Notes:              row.Notes.Ptr(),
		TimeSpent:          row.TimeSpent.Ptr(),
		CompletionEvidence: row.CompletionEvidence.Ptr(),
		CreatedAt:          row.CreatedAt,
		ArchivedAt:         row.ArchivedAt.Ptr(),
	}
}

func toProgressLogs(rows []progressRow) []task.Progress {
	logs := make([]task.Progress, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, row.toProgress())
	}
	return logs
}

type progressRepository struct {
	repository
}

var _ task.ProgressRepository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(exec core.DBExecutor) *progressRepository {
	return &progressRepository{repository{exec: exec}}
}

func (repo progressRepository) CreateProgress(ctx context.Context, pr task.Progress, exec ...core.DBExecutor) (task.Progress, error) {
	pr.ID = uuid.New().String()
	qb := psql.Insert("progress_logs").
		Columns(progressColumns...).
		Values(
			pr.ID, pr.TaskID, pr.UserID, pr.ProgressPercentage, null.StringFromPtr(pr.Notes),
			null.IntFromPtr(pr.TimeSpent), null.StringFromPtr(pr.CompletionEvidence), pr.CreatedAt,
			null.TimeFromPtr(pr.ArchivedAt),
		)
	if _, err := execute(ctx, repo.getExec(exec), qb); err != nil {
		return task.Progress{}, errors.Wrap(err, "inserting progress log")
	}
	return pr, nil
}

func (repo progressRepository) QueryProgress(ctx context.Context, taskID string, exec ...core.DBExecutor) ([]task.Progress, error) {
	qb := psql.Select(progressColumns...).
		From("progress_logs").
		Where(sq.Eq{"task_id": taskID, "archived_at": nil}).
		OrderBy("created_at DESC", "id")

	var rows []progressRow
	if err := selectAll(ctx, repo.getExec(exec), qb, &rows); err != nil {
		return nil, errors.Wrap(err, "querying progress logs")
	}
	return toProgressLogs(rows), nil
}

func (repo progressRepository) QueryUserProgress(
	ctx context.Context,
	userID string,
	since time.Time,
	limit int,
	exec ...core.DBExecutor,
) ([]task.Progress, error) {
	qb := psql.Select(progressColumns...).
		From("progress_logs").
		Where(sq.Eq{"user_id": userID, "archived_at": nil}).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))

	var rows []progressRow
	if err := selectAll(ctx, repo.getExec(exec), qb, &rows); err != nil {
		return nil, errors.Wrap(err, "querying user progress logs")
	}
	return toProgressLogs(rows), nil
}
