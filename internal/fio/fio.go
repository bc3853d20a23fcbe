// Package fio abstracts the filesystem the bridge stores table data on.
//
// The bridge treats the directory tree under a table location as an
// externally mutable view: other tools may add, remove or compress files at
// any time. FileIO therefore exposes only list/read/write/delete primitives;
// higher layers apply their own filtering.
package fio

import (
	"context"
	"io"
)

// FileStatus describes one directory entry.
type FileStatus struct {
	Path  string
	Name  string
	Size  int64
	IsDir bool
}

// Writer is the sink Create hands out. Exactly one of Close or Abort must be
// called: Close publishes the file, Abort discards everything written so far
// without the path ever becoming visible.
type Writer interface {
	io.Writer

	Close() error
	Abort() error
}

// FileIO is the filesystem collaborator contract.
//
// Create must publish the file atomically: the path becomes visible to
// ListStatus only once Close returns, never with partial contents. Delete of
// a missing path is not an error.
type FileIO interface {
	ListStatus(ctx context.Context, path string) ([]FileStatus, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Create(ctx context.Context, path string) (Writer, error)
	Delete(ctx context.Context, path string, recursive bool) error
	Exists(ctx context.Context, path string) (bool, error)
	Mkdirs(ctx context.Context, path string) error
}
