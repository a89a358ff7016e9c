// Package ratelimit bounds how often a user may call an endpoint within a sliding window.
package ratelimit

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

var ErrLimitExceeded = errors.New("Rate limit exceeded. Try again later.")

// Store keeps one record per allowed request.
type Store interface {
	// Count returns the number of records of userID on endpoint newer than since.
	Count(ctx context.Context, userID, endpoint string, since time.Time) (int, error)
	Record(ctx context.Context, userID, endpoint string, at time.Time) error
}

type Limiter struct {
	store   Store
	max     int
	window  time.Duration
	nowFunc func() time.Time
}

func NewLimiter(store Store, conf *core.Config) *Limiter {
	return &Limiter{
		store:   store,
		max:     conf.AI.RateLimitMax,
		window:  conf.AI.RateLimitWindow,
		nowFunc: core.Now,
	}
}

// Allow records a request of userID on endpoint, or returns ErrLimitExceeded when
// max requests were already recorded within the window.
// Count and Record are not atomic: concurrent requests may briefly exceed max.
func (l *Limiter) Allow(ctx context.Context, userID, endpoint string) error {
	now := l.nowFunc()
	count, err := l.store.Count(ctx, userID, endpoint, now.Add(-l.window))
	if err != nil {
		return pkgerrors.Wrap(err, "counting requests")
	}
	if count >= l.max {
		return ErrLimitExceeded
	}
	return pkgerrors.Wrap(l.store.Record(ctx, userID, endpoint, now), "recording request")
}
