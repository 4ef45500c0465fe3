// Package task holds the in-memory task collection for one command
// invocation and every operation on it.
package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tiwariParth/go-task-cli/internal/models"
	"github.com/tiwariParth/go-task-cli/internal/storage"
)

// TaskStore manages an ordered collection of tasks backed by a storage.Storage.
// Insertion order is display order.
type TaskStore struct {
	storage storage.Storage
	tasks   []models.Task
	lastID  int // highest id ever seen by this store
	now     func() time.Time
	logger  *log.Logger
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(ts *TaskStore) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(l *log.Logger) Option {
	return func(ts *TaskStore) {
		if l != nil {
			ts.logger = l
		}
	}
}

// Open loads the collection from s and returns a store ready for one command.
func Open(ctx context.Context, s storage.Storage, opts ...Option) (*TaskStore, error) {
	ts := &TaskStore{
		storage: s,
		now:     time.Now,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(ts)
	}

	tasks, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	ts.tasks = tasks
	ts.lastID = maxID(tasks)
	ts.logger.Debug("task store opened", "tasks", len(tasks), "last_id", ts.lastID)
	return ts, nil
}

// AddTask appends a new todo task and persists the collection.
func (ts *TaskStore) AddTask(ctx context.Context, description string) (models.Task, error) {
	if err := models.ValidateDescription(description); err != nil {
		return models.Task{}, &ValidationError{Field: "description", Err: err}
	}

	id := ts.generateUniqueID()
	task := models.NewTask(id, description, ts.now())

	next := make([]models.Task, len(ts.tasks), len(ts.tasks)+1)
	copy(next, ts.tasks)
	next = append(next, task)

	if err := ts.commit(ctx, next); err != nil {
		return models.Task{}, err
	}
	ts.lastID = id
	ts.logger.Debug("task added", "id", id)
	return task, nil
}

// UpdateTask replaces the description of the task with the given id.
func (ts *TaskStore) UpdateTask(ctx context.Context, id int, description string) (models.Task, error) {
	if err := models.ValidateDescription(description); err != nil {
		return models.Task{}, &ValidationError{Field: "description", Err: err}
	}

	return ts.mutate(ctx, id, func(t *models.Task, now time.Time) {
		t.SetDescription(description, now)
	})
}

// MarkStatus sets the status of the task with the given id. The status is
// validated before the lookup; any transition between valid statuses is
// allowed.
func (ts *TaskStore) MarkStatus(ctx context.Context, id int, status string) (models.Task, error) {
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return models.Task{}, &ValidationError{Field: "status", Value: status, Err: models.ErrInvalidStatus}
	}

	return ts.mutate(ctx, id, func(t *models.Task, now time.Time) {
		t.SetStatus(parsed, now)
	})
}

// DeleteTask removes the task with the given id, keeping the order of the rest.
func (ts *TaskStore) DeleteTask(ctx context.Context, id int) (models.Task, error) {
	idx := ts.indexOf(id)
	if idx < 0 {
		return models.Task{}, &NotFoundError{ID: id}
	}

	removed := ts.tasks[idx]
	next := make([]models.Task, 0, len(ts.tasks)-1)
	next = append(next, ts.tasks[:idx]...)
	next = append(next, ts.tasks[idx+1:]...)

	if err := ts.commit(ctx, next); err != nil {
		return models.Task{}, err
	}
	ts.logger.Debug("task deleted", "id", id)
	return removed, nil
}

// ListTasks returns tasks in insertion order, optionally only those with the
// given status. An empty filter returns everything.
func (ts *TaskStore) ListTasks(filter string) ([]models.Task, error) {
	if filter == "" {
		return ts.Tasks(), nil
	}

	status, err := models.ParseStatus(filter)
	if err != nil {
		return nil, &ValidationError{Field: "status", Value: filter, Err: models.ErrInvalidStatus}
	}

	out := make([]models.Task, 0, len(ts.tasks))
	for _, t := range ts.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

// Tasks returns a copy of the whole collection.
func (ts *TaskStore) Tasks() []models.Task {
	out := make([]models.Task, len(ts.tasks))
	copy(out, ts.tasks)
	return out
}

// generateUniqueID returns 1 + the highest id seen, so ids freed by a delete
// in this store's lifetime are never handed out again.
func (ts *TaskStore) generateUniqueID() int {
	return max(ts.lastID, maxID(ts.tasks)) + 1
}

// mutate applies fn to a copy of the task and commits it.
func (ts *TaskStore) mutate(ctx context.Context, id int, fn func(*models.Task, time.Time)) (models.Task, error) {
	idx := ts.indexOf(id)
	if idx < 0 {
		return models.Task{}, &NotFoundError{ID: id}
	}

	next := ts.Tasks()
	fn(&next[idx], ts.now())

	if err := ts.commit(ctx, next); err != nil {
		return models.Task{}, err
	}
	ts.logger.Debug("task updated", "id", id, "status", next[idx].Status)
	return next[idx], nil
}

// commit persists next and only then makes it the in-memory collection, so a
// failed save leaves the store as it was.
func (ts *TaskStore) commit(ctx context.Context, next []models.Task) error {
	if err := ts.storage.Save(ctx, next); err != nil {
		var pe *storage.PersistenceError
		if errors.As(err, &pe) {
			return err
		}
		return fmt.Errorf("save tasks: %w", err)
	}
	ts.tasks = next
	return nil
}

func (ts *TaskStore) indexOf(id int) int {
	for i := range ts.tasks {
		if ts.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func maxID(tasks []models.Task) int {
	highest := 0
	for _, t := range tasks {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}
