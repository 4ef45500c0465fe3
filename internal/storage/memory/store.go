package memory

import (
	"context"
	"sync"

	"github.com/tiwariParth/go-task-cli/internal/models"
	"github.com/tiwariParth/go-task-cli/internal/storage"
)

// MemoryStore implements the storage.Storage interface using in-memory storage
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   []models.Task
	saves   int
	saveErr error
}

// NewMemoryStore creates a new instance of MemoryStore seeded with tasks
func NewMemoryStore(tasks ...models.Task) *MemoryStore {
	return &MemoryStore{tasks: cloneTasks(tasks)}
}

// Load returns a copy of the stored tasks
func (m *MemoryStore) Load(ctx context.Context) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := storage.CheckInvariants(m.tasks); err != nil {
		return nil, &storage.CorruptStoreError{Path: "memory", Err: err}
	}
	return cloneTasks(m.tasks), nil
}

// Save replaces the stored tasks
func (m *MemoryStore) Save(ctx context.Context, tasks []models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return &storage.PersistenceError{Op: "save tasks", Path: "memory", Err: m.saveErr}
	}
	m.tasks = cloneTasks(tasks)
	m.saves++
	return nil
}

// FailSaves makes every later Save fail with err; nil restores normal saves.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saves reports how many successful saves have happened.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Snapshot returns a copy of what is currently stored.
func (m *MemoryStore) Snapshot() []models.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTasks(m.tasks)
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}
