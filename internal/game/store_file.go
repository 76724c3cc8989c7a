package game

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
)

// Persistence is the storage contract for the aggregate snapshot:
// one snapshot in, one snapshot out, atomically per call.
type Persistence interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool, error)
}

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	b, err := encodeSnapshot(snap, s.path)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

// Load distinguishes "file absent" (not an error, start empty) from
// "file present but malformed" (error, caller logs and starts empty).
func (s *FileStore) Load(ctx context.Context) (Snapshot, bool, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	// tolerate a UTF-8 BOM in hand-edited or imported state files
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))

	snap, err := decodeSnapshot(b)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}
