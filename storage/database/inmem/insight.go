package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/insight"
	"github.com/trezcool/kazi/core/ratelimit"
)

type insightRepository struct {
	db *DB
}

var _ insight.Repository = (*insightRepository)(nil) // interface compliance check

func NewInsightRepository(db *DB) *insightRepository {
	return &insightRepository{db: db}
}

func (repo *insightRepository) CreateInsight(_ context.Context, ins insight.Insight, _ ...core.DBExecutor) (insight.Insight, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ins.ID = uuid.New().String()
	repo.db.insights = append(repo.db.insights, ins)
	return ins, nil
}

func (repo *insightRepository) QueryInsights(
	_ context.Context,
	userID string,
	filter insight.QueryFilter,
	_ ...core.DBExecutor,
) ([]insight.Insight, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	insights := make([]insight.Insight, 0)
	// walk backwards: newest first
	for i := len(repo.db.insights) - 1; i >= 0; i-- {
		ins := repo.db.insights[i]
		if ins.UserID != userID || ins.ArchivedAt != nil {
			continue
		}
		if filter.Type != "" && ins.Type != filter.Type {
			continue
		}
		insights = append(insights, ins)
		if filter.Limit > 0 && len(insights) == filter.Limit {
			break
		}
	}
	return insights, nil
}

type rateLimitStore struct {
	db *DB
}

var _ ratelimit.Store = (*rateLimitStore)(nil) // interface compliance check

func NewRateLimitStore(db *DB) *rateLimitStore {
	return &rateLimitStore{db: db}
}

func (store *rateLimitStore) Count(_ context.Context, userID, endpoint string, since time.Time) (int, error) {
	store.db.mu.RLock()
	defer store.db.mu.RUnlock()

	var n int
	for _, rec := range store.db.rateLimits {
		if rec.userID == userID && rec.endpoint == endpoint && rec.at.After(since) {
			n++
		}
	}
	return n, nil
}

func (store *rateLimitStore) Record(_ context.Context, userID, endpoint string, at time.Time) error {
	store.db.mu.Lock()
	defer store.db.mu.Unlock()

	store.db.rateLimits = append(store.db.rateLimits, rateLimitRecord{userID: userID, endpoint: endpoint, at: at})
	return nil
}
