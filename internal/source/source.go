// Package source opens dataset files as line streams, decompressing
// transparently based on the file suffix. Supported codecs: gzip (.gz),
// bzip2 (.bz2), and zstandard (.zst). An empty path reads from stdin.
package source

import (
	"bufio"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxLineSize bounds a single record; bulk datasets carry large JSON lines.
const maxLineSize = 64 * 1024 * 1024

// Reader yields lines from a possibly-compressed input. It is a finite,
// non-restartable stream; each line is produced exactly once.
type Reader struct {
	scanner *bufio.Scanner
	closers []io.Closer
}

// Open creates a Reader for path. An empty path or "-" reads from stdin
// (assumed uncompressed).
func Open(path string) (*Reader, error) {
	if path == "" || path == "-" {
		return newReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("initializing zstd decoder for %s: %w", path, err)
		}
		return newReader(dec.IOReadCloser(), file), nil
	case strings.HasSuffix(path, ".gz"):
		dec, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("initializing gzip decoder for %s: %w", path, err)
		}
		return newReader(dec, file), nil
	case strings.HasSuffix(path, ".bz2"):
		return newReader(bzip2.NewReader(file), file), nil
	default:
		return newReader(file), nil
	}
}

// newReader wraps r with a line scanner. closers are closed front-to-back by
// Close, so decoders must precede the underlying file.
func newReader(r io.Reader, extra ...io.Closer) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	closers := make([]io.Closer, 0, len(extra)+1)
	if c, ok := r.(io.Closer); ok {
		closers = append(closers, c)
	}
	closers = append(closers, extra...)
	return &Reader{scanner: scanner, closers: closers}
}

// Next advances to the next line. It returns false at end of input or on a
// read error; Err distinguishes the two.
func (r *Reader) Next() bool {
	return r.scanner.Scan()
}

// Text returns the current line without its trailing newline.
func (r *Reader) Text() string {
	return r.scanner.Text()
}

// Err returns the first error encountered while reading, or nil on clean end
// of input.
func (r *Reader) Err() error {
	return r.scanner.Err()
}

// Close releases the decoder and underlying file.
func (r *Reader) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == os.Stdin {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
