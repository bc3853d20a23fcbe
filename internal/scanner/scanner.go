// Package scanner enumerates the data files under a table location.
//
// The directory tree is an untrusted, externally mutable view: other tools
// may add, remove or compress files between calls. Every List call therefore
// re-enumerates the filesystem fresh; there is no caching and no snapshot
// isolation. Entries with a hidden or temp name prefix are excluded, and
// recognized compressed variants are decompressed transparently on open.
package scanner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lakecat/lakecat/internal/fio"
)

// Hidden name prefixes. "." covers in-flight ".tmp-*" writes and artifacts
// like ".DS_Store"; "_" covers Hive-style markers such as "_SUCCESS".
const (
	hiddenPrefixDot        = "."
	hiddenPrefixUnderscore = "_"
)

// DataFile is one readable data file, with the partition values parsed from
// any k=v path segments between the table location and the file.
type DataFile struct {
	Path        string
	Size        int64
	Partition   map[string]string
	Compression Algorithm
}

// hiddenName reports whether a directory entry name carries a reserved
// hidden/temp marker.
func hiddenName(name string) bool {
	return strings.HasPrefix(name, hiddenPrefixDot) || strings.HasPrefix(name, hiddenPrefixUnderscore)
}

// List returns the data files under location, recursing into partition
// subdirectories. The result reflects filesystem state at call time; no
// ordering across files is guaranteed to callers.
func List(ctx context.Context, f fio.FileIO, location string) ([]DataFile, error) {
	return list(ctx, f, location, nil)
}

func list(ctx context.Context, f fio.FileIO, dir string, partition map[string]string) ([]DataFile, error) {
	entries, err := f.ListStatus(ctx, dir)
	if err != nil {
		return nil, err
	}

	var files []DataFile

	for _, entry := range entries {
		if hiddenName(entry.Name) {
			continue
		}

		if entry.IsDir {
			sub := partition

			if key, value, ok := strings.Cut(entry.Name, "="); ok {
				sub = make(map[string]string, len(partition)+1)
				for k, v := range partition {
					sub[k] = v
				}

				sub[key] = value
			}

			nested, err := list(ctx, f, entry.Path, sub)
			if err != nil {
				return nil, err
			}

			files = append(files, nested...)

			continue
		}

		files = append(files, DataFile{
			Path:        entry.Path,
			Size:        entry.Size,
			Partition:   partition,
			Compression: detect(entry.Name),
		})
	}

	return files, nil
}

// Open returns the byte stream of a data file with any recognized
// compression already stripped; this is the stream the record codec consumes.
func Open(ctx context.Context, f fio.FileIO, df DataFile) (io.ReadCloser, error) {
	raw, err := f.Open(ctx, df.Path)
	if err != nil {
		return nil, err
	}

	reader, err := decompressor(df.Compression, raw)
	if err != nil {
		_ = raw.Close()

		return nil, fmt.Errorf("failed to open %s: %w", df.Path, err)
	}

	return reader, nil
}
