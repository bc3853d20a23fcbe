package fio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const dirPermissions = 0750

// Local implements FileIO on the local filesystem.
type Local struct{}

// NewLocal returns a local-filesystem FileIO.
func NewLocal() *Local {
	return &Local{}
}

// ListStatus returns the entries directly under path. A missing directory
// yields an empty listing, not an error: callers treat the tree as an
// externally mutable view.
func (l *Local) ListStatus(ctx context.Context, path string) ([]FileStatus, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	statuses := make([]FileStatus, 0, len(entries))

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}

		statuses = append(statuses, FileStatus{
			Path:  filepath.Join(path, entry.Name()),
			Name:  entry.Name(),
			Size:  info.Size(),
			IsDir: entry.IsDir(),
		})
	}

	return statuses, nil
}

// Open opens a file for reading.
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return file, nil
}

// Create returns a sink for path. Data is written to a hidden ".tmp-*"
// sibling and renamed into place on Close, so readers never observe a
// partially written file and concurrent listings skip the temp name. Abort
// removes the sibling without renaming.
func (l *Local) Create(ctx context.Context, path string) (Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	return &atomicFile{file: tmpFile, tmpPath: tmpFile.Name(), finalPath: path}, nil
}

// Delete removes a path. Missing paths are ignored.
func (l *Local) Delete(ctx context.Context, path string, recursive bool) error {
	var err error
	if recursive {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}

	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}

	return nil
}

// Exists reports whether a path exists.
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Mkdirs creates a directory and its parents.
func (l *Local) Mkdirs(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, dirPermissions); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	return nil
}

// atomicFile writes to a temp file and renames into place on Close.
type atomicFile struct {
	file      *os.File
	tmpPath   string
	finalPath string
}

func (f *atomicFile) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

func (f *atomicFile) Close() error {
	if err := f.file.Sync(); err != nil {
		_ = f.file.Close()
		_ = os.Remove(f.tmpPath)

		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.file.Close(); err != nil {
		_ = os.Remove(f.tmpPath)

		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(f.tmpPath, f.finalPath); err != nil {
		_ = os.Remove(f.tmpPath)

		return fmt.Errorf("failed to rename into place: %w", err)
	}

	return nil
}

// Abort discards the temp file; the final path never appears.
func (f *atomicFile) Abort() error {
	_ = f.file.Close()

	if err := os.Remove(f.tmpPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}

	return nil
}

// Ensure Local implements FileIO.
var _ FileIO = (*Local)(nil)
