package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/logging"
)

// FileStore keeps the snapshot as a JSON file.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *logging.Logger
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string, logger *logging.Logger) (s *FileStore, err error) {
	if path == "" {
		err = errors.New("store path is required")
		return s, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s = &FileStore{path: path, logger: logger}
	return s, err
}

// Load implements ResultStore.
func (s *FileStore) Load(_ context.Context) (snap Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	data, err = os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			err = ErrEmpty
			return snap, err
		}
		err = errors.Wrapf(err, "failed to read %s", s.path)
		return snap, err
	}

	err = json.Unmarshal(data, &snap)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse %s", s.path)
		return snap, err
	}

	if len(snap.Jobs) == 0 {
		err = ErrEmpty
	}

	return snap, err
}

// Save implements ResultStore. Empty result sets are ignored.
func (s *FileStore) Save(_ context.Context, snap Snapshot) (err error) {
	stamped, ok := stamp(snap)
	if !ok {
		return err
	}

	var data []byte
	data, err = json.MarshalIndent(stamped, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal snapshot")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory: %s", dir)
		return err
	}

	// Write then rename so readers never see a partial file.
	tmp := s.path + ".tmp"
	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write %s", tmp)
		return err
	}

	err = os.Rename(tmp, s.path)
	if err != nil {
		err = errors.Wrapf(err, "failed to replace %s", s.path)
		return err
	}

	s.logger.Debug("saved job search results", "path", s.path, "jobs", len(stamped.Jobs))
	return err
}

// Shutdown implements ResultStore.
func (s *FileStore) Shutdown(_ context.Context) (err error) {
	return err
}
