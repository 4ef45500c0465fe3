package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tiwariParth/go-task-cli/internal/models"
	"github.com/tiwariParth/go-task-cli/internal/storage"
)

func newTestStore(t *testing.T, path string, opts ...Option) *FileStore {
	t.Helper()
	fs, err := NewFileStore(path, opts...)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return fs
}

func sampleTasks() []models.Task {
	created := time.Date(2024, 3, 9, 8, 30, 0, 123456000, time.Local)
	a := models.NewTask(1, "buy milk", created)
	b := models.NewTask(4, "写报告", created.Add(time.Minute))
	b.SetStatus(models.StatusInProgress, created.Add(time.Hour))
	return []models.Task{a, b}
}

func TestLoadMissingFile(t *testing.T) {
	fs := newTestStore(t, filepath.Join(t.TempDir(), "tasks.json"))

	tasks, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", tasks)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, strategy := range map[string]WriteStrategy{"overwrite": Overwrite, "atomic": AtomicRename} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			fs := newTestStore(t, path, WithWriteStrategy(strategy))
			original := sampleTasks()

			if err := fs.Save(context.Background(), original); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			loaded, err := fs.Load(context.Background())
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if len(loaded) != len(original) {
				t.Fatalf("got %d tasks, want %d", len(loaded), len(original))
			}
			for i := range original {
				got, want := loaded[i], original[i]
				if got.ID != want.ID || got.Description != want.Description || got.Status != want.Status {
					t.Errorf("task[%d] = %+v, want %+v", i, got, want)
				}
				if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
					t.Errorf("task[%d] timestamps = %v/%v, want %v/%v", i, got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
				}
			}

			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Errorf("expected only the tasks file in dir, found %d entries", len(entries))
			}
		})
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	fs := newTestStore(t, path)

	if err := fs.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Errorf("empty store saved as %q, want %q", data, "[]\n")
	}

	if err := fs.Save(context.Background(), sampleTasks()[:1]); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[\n  {\n", `    "id": 1,`, `    "status": "todo",`, `"createdAt": "2024-03-09T08:30:00.123456`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("saved file missing %q:\n%s", want, data)
		}
	}
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "not json", content: "{oops"},
		{name: "object instead of array", content: `{"tasks": []}`},
		{name: "unknown status", content: `[{"id":1,"description":"a","status":"blocked","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`},
		{name: "missing field", content: `[{"id":1,"description":"a","status":"todo","createdAt":"2024-01-01T00:00:00Z"}]`},
		{name: "fractional id", content: `[{"id":1.5,"description":"a","status":"todo","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`},
		{name: "bad timestamp", content: `[{"id":1,"description":"a","status":"todo","createdAt":"yesterday","updatedAt":"2024-01-01T00:00:00Z"}]`},
		{name: "updated before created", content: `[{"id":1,"description":"a","status":"todo","createdAt":"2024-01-02T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`},
		{name: "duplicate ids", content: `[
			{"id":1,"description":"a","status":"todo","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"},
			{"id":1,"description":"b","status":"done","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := newTestStore(t, path).Load(context.Background())
			var corrupt *storage.CorruptStoreError
			if !errors.As(err, &corrupt) {
				t.Fatalf("expected CorruptStoreError, got %v", err)
			}
			if corrupt.Path != path {
				t.Errorf("Path = %q, want %q", corrupt.Path, path)
			}
		})
	}
}

func TestLoadBlankDescriptionIsSchemaViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `[{"id":1,"description":"   ","status":"todo","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestStore(t, path).Load(context.Background())
	var corrupt *storage.CorruptStoreError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptStoreError, got %v", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "schema violation") || !strings.Contains(msg, "description") {
		t.Errorf("error = %q, want a schema violation on description", msg)
	}
}

func TestPathDefaultsToTasksJSON(t *testing.T) {
	if got := newTestStore(t, "").Path(); got != DefaultPath {
		t.Errorf("Path() = %q, want %q", got, DefaultPath)
	}
}

func TestSavePersistenceError(t *testing.T) {
	for name, strategy := range map[string]WriteStrategy{"overwrite": Overwrite, "atomic": AtomicRename} {
		t.Run(name, func(t *testing.T) {
			// A directory where the file should be makes every write fail.
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.Mkdir(path, 0755); err != nil {
				t.Fatal(err)
			}

			err := newTestStore(t, path, WithWriteStrategy(strategy)).Save(context.Background(), sampleTasks())
			var pe *storage.PersistenceError
			if !errors.As(err, &pe) {
				t.Fatalf("expected PersistenceError, got %v", err)
			}
		})
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.json")
	fs := newTestStore(t, path)

	if err := fs.Save(context.Background(), sampleTasks()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("tasks file not created: %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := newTestStore(t, filepath.Join(t.TempDir(), "tasks.json"))
	if _, err := fs.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load error = %v, want context.Canceled", err)
	}
	if err := fs.Save(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Save error = %v, want context.Canceled", err)
	}
}
