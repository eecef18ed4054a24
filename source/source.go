// Package source abstracts the files a dictionary is built from. The
// profiling engine never touches the filesystem itself; it asks a Source
// for the header and for sampled column values.
package source

// Source yields the header and sampled column values of one tabular
// file. Implementations are expected to be cheap to re-read: the builder
// scans categorical columns a second time with a smaller row limit.
type Source interface {
	// Name identifies the source in provenance and log output.
	Name() string

	// Header returns the column names in file order.
	Header() ([]string, error)

	// Column returns up to maxRows raw cell values for the named
	// column, in row order, including blanks. maxRows <= 0 means no
	// limit.
	Column(name string, maxRows int) ([]string, error)
}
