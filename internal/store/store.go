package store

import (
	"context"
	"errors"

	"github.com/me/schedsim/pkg/model"
)

// ErrNotFound is returned by mutating operations on a missing row.
var ErrNotFound = errors.New("not found")

// Store defines the persistence layer for simulation runs.
type Store interface {
	// Run history
	CreateRun(ctx context.Context, run *model.Run) error
	// GetRun returns nil, nil when id does not exist.
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// ListRuns returns runs newest first without their Result or Workload, and
	// the total matching count.
	ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error)
	DeleteRun(ctx context.Context, id string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
