package file

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tiwariParth/go-task-cli/internal/models"
	"github.com/tiwariParth/go-task-cli/internal/storage"
)

// DefaultPath is the tasks file used when nothing else is configured.
const DefaultPath = "tasks.json"

const schemaURL = "tasks.schema.json"

//go:embed tasks.schema.json
var tasksSchema string

// WriteStrategy puts data at path, replacing whatever was there.
type WriteStrategy func(path string, data []byte, perm os.FileMode) error

// Overwrite truncates the target and writes in place. A crash mid-write can
// leave a partial file.
func Overwrite(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// AtomicRename writes a sibling temp file, syncs it and renames it over the
// target, so readers see either the old or the new file.
func AtomicRename(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// FileStore implements storage.Storage on top of a single JSON file
type FileStore struct {
	filePath string
	write    WriteStrategy
	logger   *log.Logger
	schema   *jsonschema.Schema
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithWriteStrategy replaces the default Overwrite strategy.
func WithWriteStrategy(w WriteStrategy) Option {
	return func(f *FileStore) {
		if w != nil {
			f.write = w
		}
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(l *log.Logger) Option {
	return func(f *FileStore) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFileStore creates a new instance of FileStore
func NewFileStore(filePath string, opts ...Option) (*FileStore, error) {
	if filePath == "" {
		filePath = DefaultPath
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile tasks schema: %w", err)
	}

	f := &FileStore{
		filePath: filePath,
		write:    Overwrite,
		logger:   log.New(io.Discard),
		schema:   schema,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the tasks file location.
func (f *FileStore) Path() string {
	return f.filePath
}

// Load reads the tasks file. A missing file is an empty collection.
func (f *FileStore) Load(ctx context.Context) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.Debug("tasks file not found, starting empty", "path", f.filePath)
			return []models.Task{}, nil
		}
		return nil, &storage.PersistenceError{Op: "read tasks file", Path: f.filePath, Err: err}
	}

	tasks, err := f.decode(data)
	if err != nil {
		return nil, &storage.CorruptStoreError{Path: f.filePath, Err: err}
	}

	f.logger.Debug("loaded tasks", "path", f.filePath, "count", len(tasks))
	return tasks, nil
}

// Save overwrites the tasks file with the full collection.
func (f *FileStore) Save(ctx context.Context, tasks []models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return &storage.PersistenceError{Op: "marshal tasks", Path: f.filePath, Err: err}
	}
	data = append(data, '\n')

	// Ensure directory exists
	if dir := filepath.Dir(f.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &storage.PersistenceError{Op: "create tasks directory", Path: dir, Err: err}
		}
	}

	if err := f.write(f.filePath, data, 0644); err != nil {
		return &storage.PersistenceError{Op: "write tasks file", Path: f.filePath, Err: err}
	}

	f.logger.Debug("saved tasks", "path", f.filePath, "count", len(tasks))
	return nil
}

// decode validates raw file content against the schema before trusting it
// as typed records.
func (f *FileStore) decode(data []byte) ([]models.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse tasks file: %w", err)
	}
	if dec.More() {
		return nil, errors.New("parse tasks file: trailing data after JSON document")
	}

	if err := f.schema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if err := storage.CheckInvariants(tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(tasksSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

// schemaError flattens a schema validation tree into its first leaf, which
// is the most specific message.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("schema violation at %s: %s", loc, ve.Message)
}
