package scanner

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies the compression of a data file, detected by suffix.
type Algorithm string

const (
	AlgorithmNone Algorithm = "none"
	AlgorithmGzip Algorithm = "gzip"
	AlgorithmZstd Algorithm = "zstd"
	AlgorithmLZ4  Algorithm = "lz4"
)

var suffixes = map[string]Algorithm{
	".gz":  AlgorithmGzip,
	".zst": AlgorithmZstd,
	".lz4": AlgorithmLZ4,
}

// detect maps a file name to its compression algorithm.
func detect(name string) Algorithm {
	for suffix, algo := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return algo
		}
	}

	return AlgorithmNone
}

// decompressor wraps raw in the matching decompressing reader. The returned
// closer closes both the decompressor and the underlying stream.
func decompressor(algo Algorithm, raw io.ReadCloser) (io.ReadCloser, error) {
	switch algo {
	case AlgorithmNone:
		return raw, nil
	case AlgorithmGzip:
		reader, err := gzip.NewReader(raw)
		if err != nil {
			return nil, err
		}

		return &wrappedReader{Reader: reader, close: func() error {
			closeErr := reader.Close()
			if err := raw.Close(); err != nil {
				return err
			}

			return closeErr
		}}, nil
	case AlgorithmZstd:
		decoder, err := zstd.NewReader(raw)
		if err != nil {
			return nil, err
		}

		return &wrappedReader{Reader: decoder, close: func() error {
			decoder.Close()
			return raw.Close()
		}}, nil
	case AlgorithmLZ4:
		return &wrappedReader{Reader: lz4.NewReader(raw), close: raw.Close}, nil
	default:
		return nil, fmt.Errorf("unknown compression algorithm: %s", algo)
	}
}

// wrappedReader pairs a decompressing reader with a composite closer.
type wrappedReader struct {
	io.Reader
	close func() error
}

func (w *wrappedReader) Close() error {
	return w.close()
}
