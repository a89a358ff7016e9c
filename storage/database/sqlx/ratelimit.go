package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/ratelimit"
)

// rateLimitStore keeps one ai_rate_limits row per allowed request.
type rateLimitStore struct {
	repository
}

var _ ratelimit.Store = (*rateLimitStore)(nil) // interface compliance check

func NewRateLimitStore(exec core.DBExecutor) *rateLimitStore {
	return &rateLimitStore{repository{exec: exec}}
}

func (store rateLimitStore) Count(ctx context.Context, userID, endpoint string, since time.Time) (int, error) {
	qb := psql.Select("COUNT(*)").
		From("ai_rate_limits").
		Where(sq.Eq{"user_id": userID, "endpoint": endpoint}).
		Where(sq.Gt{"window_start": since})

	n, err := count(ctx, store.exec, qb)
	return n, errors.Wrap(err, "counting rate limit records")
}

func (store rateLimitStore) Record(ctx context.Context, userID, endpoint string, at time.Time) error {
	qb := psql.Insert("ai_rate_limits").
		Columns("id", "user_id", "endpoint", "request_count", "window_start").
		Values(uuid.New().String(), userID, endpoint, 1, at)

	_, err := execute(ctx, store.exec, qb)
	return errors.Wrap(err, "recording rate limit request")
}
