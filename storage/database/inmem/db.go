// Package inmemdb implements the repositories over process memory. Used by tests and demos.
package inmemdb

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/insight"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

type (
	rateLimitRecord struct {
		userID   string
		endpoint string
		at       time.Time
	}

	// DB holds every table. A single lock guards them so that lookups across tables stay consistent.
	DB struct {
		mu         sync.RWMutex
		users      map[string]*user.User
		tasks      map[string]*task.Task
		progress   []task.Progress
		insights   []insight.Insight
		rateLimits []rateLimitRecord
	}
)

func Open() *DB {
	return &DB{
		users: make(map[string]*user.User),
		tasks: make(map[string]*task.Task),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = make(map[string]*user.User)
	db.tasks = make(map[string]*task.Task)
	db.progress = nil
	db.insights = nil
	db.rateLimits = nil
}

type transactor struct{}

var _ core.Transactor = transactor{} // interface compliance check

// NewTransactor runs fn directly: the in-memory repositories have no executor to share.
// It is not atomic: writes made by fn before it fails are kept.
func NewTransactor() core.Transactor { return transactor{} }

func (transactor) RunInTx(_ context.Context, fn func(exec core.DBExecutor) error) error {
	return fn(nil)
}
