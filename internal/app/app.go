package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/tiwariParth/go-task-cli/internal/config"
	"github.com/tiwariParth/go-task-cli/internal/storage"
	"github.com/tiwariParth/go-task-cli/internal/storage/file"
	"github.com/tiwariParth/go-task-cli/internal/storage/memory"
	"github.com/tiwariParth/go-task-cli/internal/task"
)

// TodoApp is everything one command invocation needs.
type TodoApp struct {
	Config *config.Config
	Logger *log.Logger
	Store  *task.TaskStore
}

// NewTodoApp builds the file storage described by cfg and loads the tasks.
// With cfg.DryRun the file is read once and changes stay in memory.
func NewTodoApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*TodoApp, error) {
	strategy := file.Overwrite
	if cfg.AtomicWrites {
		strategy = file.AtomicRename
	}

	fs, err := file.NewFileStore(cfg.DataFile, file.WithWriteStrategy(strategy), file.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("opening task file", "path", fs.Path(), "atomic", cfg.AtomicWrites, "dry_run", cfg.DryRun)

	if !cfg.DryRun {
		return NewTodoAppWithStorage(ctx, cfg, logger, fs)
	}
	loaded, err := fs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("open task store: load tasks: %w", err)
	}
	return NewTodoAppWithStorage(ctx, cfg, logger, memory.NewMemoryStore(loaded...))
}

// NewTodoAppWithStorage loads tasks from an already built storage backend.
func NewTodoAppWithStorage(ctx context.Context, cfg *config.Config, logger *log.Logger, s storage.Storage) (*TodoApp, error) {
	store, err := task.Open(ctx, s, task.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	return &TodoApp{Config: cfg, Logger: logger, Store: store}, nil
}
