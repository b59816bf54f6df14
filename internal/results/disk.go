package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Spool file names inside a transaction directory.
const (
	metadataFile = "metadata.json"
	stdoutFile   = "stdout"
	stderrFile   = "stderr"
	exitcodeFile = "exitcode"
)

// DiskStore writes one directory per transaction:
//
//	<dir>/<id>/metadata.json
//	<dir>/<id>/stdout
//	<dir>/<id>/stderr
//	<dir>/<id>/exitcode  (only once finished)
//
// stdout and stderr hold the captured bytes exactly; metadata.json is
// replaced atomically so readers never see a partial record.
type DiskStore struct {
	mu  sync.Mutex
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir. When dir is empty a
// temporary directory is created lazily on first use.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save writes rec to its transaction directory.
func (s *DiskStore) Save(rec *Record) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	root, err := s.ensureDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(root, rec.ID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating spool for %s: %w", rec.ID, err)
	}

	if err := os.WriteFile(filepath.Join(dir, stdoutFile), []byte(rec.Stdout), 0o640); err != nil {
		return fmt.Errorf("writing stdout of %s: %w", rec.ID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, stderrFile), []byte(rec.Stderr), 0o640); err != nil {
		return fmt.Errorf("writing stderr of %s: %w", rec.ID, err)
	}
	if rec.Done() {
		code := []byte(strconv.Itoa(rec.ExitCode) + "\n")
		if err := os.WriteFile(filepath.Join(dir, exitcodeFile), code, 0o640); err != nil {
			return fmt.Errorf("writing exitcode of %s: %w", rec.ID, err)
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling result %s: %w", rec.ID, err)
	}
	tmp, err := os.CreateTemp(dir, metadataFile+".*")
	if err != nil {
		return fmt.Errorf("writing result %s: %w", rec.ID, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing result %s: %w", rec.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing result %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, metadataFile)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing result %s: %w", rec.ID, err)
	}
	return nil
}

// Load reads a record from disk. Output is taken from the raw stream files
// so bytes that are not valid UTF-8 survive.
func (s *DiskStore) Load(id string) (*Record, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	root, err := s.ensureDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, id)

	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading result %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshalling result %s: %w", id, err)
	}

	if b, err := os.ReadFile(filepath.Join(dir, stdoutFile)); err == nil {
		rec.Stdout = string(b)
	}
	if b, err := os.ReadFile(filepath.Join(dir, stderrFile)); err == nil {
		rec.Stderr = string(b)
	}
	return &rec, nil
}

// Dir returns the spool directory, creating it if needed.
func (s *DiskStore) Dir() (string, error) {
	return s.ensureDir()
}

func (s *DiskStore) ensureDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o750); err != nil {
			return "", fmt.Errorf("creating result directory: %w", err)
		}
		return s.dir, nil
	}
	dir, err := os.MkdirTemp("", "agentd-spool-*")
	if err != nil {
		return "", fmt.Errorf("creating result directory: %w", err)
	}
	s.dir = dir
	return dir, nil
}
