package scanner

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakecat/lakecat/internal/fio"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readDataFile(t *testing.T, df DataFile) string {
	t.Helper()

	reader, err := Open(context.Background(), fio.NewLocal(), df)
	require.NoError(t, err)

	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)

	return string(data)
}

func TestListExcludesHiddenFiles(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "data-1.csv"), "1,a\n")
	writeFile(t, filepath.Join(dir, ".tmp-123"), "partial")
	writeFile(t, filepath.Join(dir, "_SUCCESS"), "")

	files, err := List(context.Background(), fio.NewLocal(), dir)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "data-1.csv"), files[0].Path)
	assert.Equal(t, AlgorithmNone, files[0].Compression)
}

func TestListIsFreshPerCall(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	local := fio.NewLocal()

	files, err := List(ctx, local, dir)
	require.NoError(t, err)
	assert.Empty(t, files)

	writeFile(t, filepath.Join(dir, "data-1.csv"), "1,a\n")

	files, err = List(ctx, local, dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestListParsesPartitionSegments(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "b=north", "data-1.csv"), "100\n")
	writeFile(t, filepath.Join(dir, "b=south", "data-2.csv"), "200\n")

	files, err := List(context.Background(), fio.NewLocal(), dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	values := map[string]bool{}
	for _, df := range files {
		values[df.Partition["b"]] = true
	}

	assert.True(t, values["north"])
	assert.True(t, values["south"])
}

func TestDetect(t *testing.T) {
	assert.Equal(t, AlgorithmGzip, detect("data-1.json.gz"))
	assert.Equal(t, AlgorithmZstd, detect("data-1.csv.zst"))
	assert.Equal(t, AlgorithmLZ4, detect("data-1.csv.lz4"))
	assert.Equal(t, AlgorithmNone, detect("data-1.csv"))
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data-1.json.gz")

	file, err := os.Create(path)
	require.NoError(t, err)

	writer := gzip.NewWriter(file)
	_, err = writer.Write([]byte(`{"a":1}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, file.Close())

	files, err := List(context.Background(), fio.NewLocal(), dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, AlgorithmGzip, files[0].Compression)

	assert.Equal(t, `{"a":1}`+"\n", readDataFile(t, files[0]))
}

func TestOpenZstd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data-1.csv.zst")

	file, err := os.Create(path)
	require.NoError(t, err)

	encoder, err := zstd.NewWriter(file)
	require.NoError(t, err)
	_, err = encoder.Write([]byte("1,a\n"))
	require.NoError(t, err)
	require.NoError(t, encoder.Close())
	require.NoError(t, file.Close())

	files, err := List(context.Background(), fio.NewLocal(), dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "1,a\n", readDataFile(t, files[0]))
}

func TestOpenLZ4(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data-1.csv.lz4")

	file, err := os.Create(path)
	require.NoError(t, err)

	writer := lz4.NewWriter(file)
	_, err = writer.Write([]byte("1,a\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, file.Close())

	files, err := List(context.Background(), fio.NewLocal(), dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "1,a\n", readDataFile(t, files[0]))
}
