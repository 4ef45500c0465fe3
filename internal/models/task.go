package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Status represents the current status of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ErrInvalidStatus is returned when a value is not one of Statuses.
var ErrInvalidStatus = errors.New("must be one of: " + strings.Join(StatusNames(), ", "))

// StatusNames returns Statuses as plain strings.
func StatusNames() []string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return names
}

// ParseStatus converts text into a Status, rejecting anything outside the
// closed set.
func ParseStatus(s string) (Status, error) {
	if !slices.Contains(Statuses, Status(s)) {
		return "", fmt.Errorf("invalid status %q: %w", s, ErrInvalidStatus)
	}
	return Status(s), nil
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// UnmarshalJSON validates the status while decoding.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Task represents a single to-do entry
type Task struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTask creates a todo task stamped with now.
func NewTask(id int, description string, now time.Time) Task {
	return Task{
		ID:          id,
		Description: description,
		Status:      StatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ValidateDescription rejects empty or blank descriptions.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return errors.New("description cannot be empty")
	}
	return nil
}

// Validate checks if the task has valid data
func (t *Task) Validate() error {
	if t.ID < 1 {
		return fmt.Errorf("id must be positive, got %d", t.ID)
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid status %q: %w", t.Status, ErrInvalidStatus)
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return errors.New("updatedAt is before createdAt")
	}
	return nil
}

// SetDescription replaces the description and refreshes UpdatedAt.
func (t *Task) SetDescription(description string, now time.Time) {
	t.Description = description
	t.touch(now)
}

// SetStatus sets the status and refreshes UpdatedAt. Any transition is
// allowed, including back to todo.
func (t *Task) SetStatus(status Status, now time.Time) {
	t.Status = status
	t.touch(now)
}

// touch keeps UpdatedAt >= CreatedAt even if the clock moved backwards.
func (t *Task) touch(now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}
