// Package reader opens tabular data files for profiling, transparently
// handling gzip/bzip2 compression and normalizing line endings so the
// CSV layer only ever sees newline-delimited records.
package reader

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var bom = []byte{0xef, 0xbb, 0xbf}

// UniversalReader wraps an io.Reader to strip a UTF-8 BOM and replace
// carriage returns with newlines, so files written with classic-Mac line
// endings still split into records.
type UniversalReader struct {
	r io.Reader
}

func NewUniversalReader(r io.Reader) *UniversalReader {
	return &UniversalReader{r}
}

func (r *UniversalReader) Read(buf []byte) (int, error) {
	n, err := r.r.Read(buf)

	if bytes.HasPrefix(buf, bom) {
		copy(buf, buf[len(bom):])
		n -= len(bom)
	}

	for i, b := range buf {
		if b == '\r' {
			buf[i] = '\n'
		}
	}

	return n, err
}

func (r *UniversalReader) Close() error {
	if rc, ok := r.r.(io.Closer); ok {
		return rc.Close()
	}
	return nil
}

// DetectCompression inspects the file extension of a path and reports
// the compression in use, if any.
func DetectCompression(name string) string {
	switch filepath.Ext(name) {
	case ".gzip", ".gz":
		return "gzip"
	case ".bzip2", ".bz2":
		return "bzip2"
	}

	return ""
}

// BasePath strips compression extensions so format detection can look at
// the underlying file name, e.g. "data.csv.gz" -> "data.csv".
func BasePath(name string) string {
	for DetectCompression(name) != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// Reader is an open, decompressed, line-ending-normalized file stream.
type Reader struct {
	Name        string
	Compression string

	reader io.Reader
	file   *os.File
}

func (r *Reader) Read(buf []byte) (int, error) {
	return r.reader.Read(buf)
}

func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Open opens a file for reading. If compr is empty it is detected from
// the file extension. An empty name reads from stdin.
func Open(name, compr string) (*Reader, error) {
	if compr == "" {
		compr = DetectCompression(name)
	}

	switch compr {
	case "", "gzip", "bzip2":
	default:
		return nil, fmt.Errorf("unknown compression type %s", compr)
	}

	r := &Reader{
		Name:        name,
		Compression: compr,
	}

	if name == "" {
		r.reader = os.Stdin
	} else {
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}

		r.file = file
		r.reader = file
	}

	switch compr {
	case "gzip":
		gr, err := gzip.NewReader(r.reader)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.reader = gr

	case "bzip2":
		r.reader = bzip2.NewReader(r.reader)
	}

	r.reader = NewUniversalReader(r.reader)

	return r, nil
}
