package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/task"
)

type progressRepository struct {
	db *DB
}

var _ task.ProgressRepository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) CreateProgress(_ context.Context, pr task.Progress, _ ...core.DBExecutor) (task.Progress, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	pr.ID = uuid.New().String()
	repo.db.progress = append(repo.db.progress, pr)
	return pr, nil
}

// newestFirst keeps insertion order for logs created at the same instant, latest insert first.
func newestFirst(logs []task.Progress) []task.Progress {
	out := make([]task.Progress, len(logs))
	for i, l := range logs {
		out[len(logs)-1-i] = l
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (repo *progressRepository) QueryProgress(_ context.Context, taskID string, _ ...core.DBExecutor) ([]task.Progress, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	logs := make([]task.Progress, 0)
	for _, pr := range repo.db.progress {
		if pr.TaskID == taskID && pr.ArchivedAt == nil {
			logs = append(logs, pr)
		}
	}
	return newestFirst(logs), nil
}

func (repo *progressRepository) QueryUserProgress(
	_ context.Context,
	userID string,
	since time.Time,
	limit int,
	_ ...core.DBExecutor,
) ([]task.Progress, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	logs := make([]task.Progress, 0)
	for _, pr := range repo.db.progress {
		if pr.UserID == userID && pr.ArchivedAt == nil && !pr.CreatedAt.Before(since) {
			logs = append(logs, pr)
		}
	}
	logs = newestFirst(logs)
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
