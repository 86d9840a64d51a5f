package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alpacachat/alpaca/backend/internal/model/chat"
)

// StorageErrorKind classifies transcript file failures.
type StorageErrorKind string

const (
	KindWrite StorageErrorKind = "write"
	KindRead  StorageErrorKind = "read"
	KindParse StorageErrorKind = "parse"
)

// StorageError reports a failed transcript save or load.
type StorageError struct {
	Kind StorageErrorKind
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("transcript %s failed for %s: %v", e.Kind, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageKind reports whether err is a StorageError of the given kind.
func IsStorageKind(err error, kind StorageErrorKind) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// LoadState tells whether a saved transcript existed.
type LoadState int

const (
	StateEmpty LoadState = iota
	StateFound
)

// Snapshot is the result of loading the transcript file.
type Snapshot struct {
	State LoadState
	Turns []chat.Turn
}

// FileStore mirrors a transcript to a single JSON array file.
// There is no locking; one writer per file is assumed.
type FileStore struct {
	path string
}

// NewFileStore returns a store bound to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the transcript file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save replaces the file with the given turns.
func (s *FileStore) Save(turns []chat.Turn) error {
	if turns == nil {
		turns = []chat.Turn{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(turns); err != nil {
		return &StorageError{Kind: KindWrite, Path: s.path, Err: err}
	}

	if err := writeFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return &StorageError{Kind: KindWrite, Path: s.path, Err: err}
	}
	return nil
}

// Load reads the file. A missing file is the first-run case and yields StateEmpty.
func (s *FileStore) Load() (Snapshot, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{State: StateEmpty}, nil
		}
		return Snapshot{}, &StorageError{Kind: KindRead, Path: s.path, Err: err}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, &StorageError{Kind: KindRead, Path: s.path, Err: err}
	}

	turns, err := decodeTurns(data)
	if err != nil {
		return Snapshot{}, &StorageError{Kind: KindParse, Path: s.path, Err: err}
	}
	return Snapshot{State: StateFound, Turns: turns}, nil
}

func decodeTurns(data []byte) ([]chat.Turn, error) {
	var turns *[]chat.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, err
	}
	if turns == nil {
		return nil, errors.New("expected a JSON array of turns")
	}

	for i, turn := range *turns {
		if !turn.Role.Valid() {
			return nil, fmt.Errorf("turn %d: unknown role %q", i, turn.Role)
		}
	}
	return *turns, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure dir for %s: %w", path, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}
