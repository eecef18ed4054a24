package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"

	"github.com/psych-ds/psychds-r-sub000/reader"
)

// CSVFile reads header and column samples from a delimited text file,
// optionally gzip/bzip2 compressed. Each column read re-opens the file;
// samples are small enough that this beats holding the whole table in
// memory.
type CSVFile struct {
	Path      string
	Delimiter rune

	// Compression overrides extension-based detection when set.
	Compression string

	header []string
}

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{
		Path:      path,
		Delimiter: ',',
	}
}

// Name returns the file's base name, which identifies it in provenance.
func (f *CSVFile) Name() string {
	return filepath.Base(f.Path)
}

func (f *CSVFile) open() (*reader.Reader, *csv.Reader, error) {
	r, err := reader.Open(f.Path, f.Compression)
	if err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = f.Delimiter
	// Ragged rows are padded per-column instead of failing the file.
	cr.FieldsPerRecord = -1

	return r, cr, nil
}

// Header returns the first record of the file. The result is cached, so
// repeated scans of the same source parse the header once.
func (f *CSVFile) Header() ([]string, error) {
	if f.header != nil {
		return f.header, nil
	}

	r, cr, err := f.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	record, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", f.Path, err)
	}

	f.header = record

	return f.header, nil
}

// Column reads up to maxRows values of the named column. Rows shorter
// than the header contribute an empty cell, which the cleaner treats as
// missing.
func (f *CSVFile) Column(name string, maxRows int) ([]string, error) {
	header, err := f.Header()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, h := range header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in %s", name, f.Path)
	}

	r, cr, err := f.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// Skip the header record.
	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", f.Path, err)
	}

	var values []string

	for maxRows <= 0 || len(values) < maxRows {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Path, err)
		}

		var v string
		if idx < len(record) {
			v = record[idx]
		}
		values = append(values, v)
	}

	return values, nil
}
