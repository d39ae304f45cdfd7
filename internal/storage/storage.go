// Package storage persists the task list and user profile between runs.
//
// Two backends are available: "sqlite" keeps everything in a single database
// file, "text" keeps one task per line in tasks.txt and the profile in a TOML
// file next to it. Both write the complete task list on every save.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tgienger/erii/internal/models"
)

const (
	BackendSQLite = "sqlite"
	BackendText   = "text"
)

// ErrUnknownBackend is returned when the configured backend does not exist.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Profile holds the details collected when erii is first run.
type Profile struct {
	Name     string `toml:"name"`
	Birthday string `toml:"birthday"`
	Gender   string `toml:"gender"`
}

// IsZero reports whether no profile has been recorded yet.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

// Store loads and saves tasks and profile data.
type Store interface {
	// LoadTasks returns the stored tasks in list order.
	LoadTasks(ctx context.Context) ([]models.Task, error)
	// SaveTasks replaces the stored task list.
	SaveTasks(ctx context.Context, tasks []models.Task) error

	LoadProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error

	// Setting returns a stored preference, or "" if unset.
	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	Close() error
}

// Open opens the store for backend inside dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(dataDir)
	case BackendText:
		return OpenText(dataDir)
	}
	return nil, fmt.Errorf("%w: %q (valid: %s, %s)", ErrUnknownBackend, backend, BackendSQLite, BackendText)
}
