// Package checkpoint persists the timestamp boundary of the last
// successfully completed pipeline run.
package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// Store reads and writes the run boundary. A zero time from Read means no
// checkpoint exists yet; the pipeline bootstraps its window in that case.
type Store interface {
	Read(ctx context.Context) (time.Time, error)
	Write(ctx context.Context, t time.Time) error
}

// FileStore keeps the checkpoint as a single RFC 3339 line in a text file.
type FileStore struct {
	path string
}

// NewFile creates a FileStore at the given path.
func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

// Read returns the stored timestamp. A missing file is a valid initial
// state and returns a zero time with no error.
func (s *FileStore) Read(context.Context) (time.Time, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "checkpoint: read %s", s.path)
	}

	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "checkpoint: parse %s", s.path)
	}
	return t, nil
}

// Write stores the timestamp, creating parent directories as needed.
func (s *FileStore) Write(_ context.Context, t time.Time) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "checkpoint: create dir %s", dir)
		}
	}
	data := t.UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(s.path, []byte(data), 0o644); err != nil {
		return eris.Wrapf(err, "checkpoint: write %s", s.path)
	}
	return nil
}

// Memory is an in-process Store for tests.
type Memory struct {
	mu sync.Mutex
	t  time.Time

	ReadErr  error
	WriteErr error
}

func (m *Memory) Read(context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return time.Time{}, m.ReadErr
	}
	return m.t, nil
}

func (m *Memory) Write(_ context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.t = t
	return nil
}

// Last returns the stored timestamp.
func (m *Memory) Last() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}
