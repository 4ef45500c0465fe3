package storage

import (
	"context"
	"fmt"

	"github.com/tiwariParth/go-task-cli/internal/models"
)

// Storage defines how the task collection is persisted between invocations.
// Load returns tasks in stored order; a missing backing store is an empty
// collection, not an error. Save replaces the whole stored collection.
type Storage interface {
	Load(ctx context.Context) ([]models.Task, error)
	Save(ctx context.Context, tasks []models.Task) error
}

// CorruptStoreError reports a backing store that exists but cannot be
// trusted: malformed JSON, a schema violation or a broken invariant.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt task store %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failure to read or write the backing store.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CheckInvariants verifies a loaded collection: every task is valid and ids
// are unique. Backends call it at the load boundary.
func CheckInvariants(tasks []models.Task) error {
	seen := make(map[int]struct{}, len(tasks))
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return fmt.Errorf("task[%d]: %w", i, err)
		}
		if _, dup := seen[tasks[i].ID]; dup {
			return fmt.Errorf("task[%d]: duplicate id %d", i, tasks[i].ID)
		}
		seen[tasks[i].ID] = struct{}{}
	}
	return nil
}
