package storage

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("storage closed")

// Config configures storage.
//
// Driver values:
//   - "file" (default): JSON document
//   - "sqlite": SQLite database file
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store loads and saves id snapshots.
type Store interface {
	// Load returns previously saved ids, oldest first. A store that was never
	// saved returns an empty slice and no error.
	Load(ctx context.Context) ([]string, error)
	// Save replaces the persisted ids with ids, keeping their order.
	Save(ctx context.Context, ids []string) error
	// Path is the on-disk location, handed to the durability hook.
	Path() string
	Close() error
}
