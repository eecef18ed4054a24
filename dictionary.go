// Package datadict assembles a data dictionary from a set of tabular
// files: one inferred profile per distinct column name across the whole
// dataset.
package datadict

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/psych-ds/psychds-r-sub000/profile"
	"github.com/psych-ds/psychds-r-sub000/source"
)

// Dictionary maps variable names to their inferred profiles.
type Dictionary map[string]*profile.Variable

// Variables returns the profiles sorted by name.
func (d Dictionary) Variables() []*profile.Variable {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]*profile.Variable, len(names))
	for i, n := range names {
		out[i] = d[n]
	}
	return out
}

// Options tunes dictionary building. The zero value gets sensible
// defaults from NewBuilder.
type Options struct {
	// Literal strings treated as absent data. Defaults to
	// profile.DefaultMissingTokens.
	MissingTokens []string

	// Rows sampled per column during classification.
	SampleRows int

	// Rows sampled per column during the categorical re-scan.
	CategoricalSampleRows int

	// Categorical vocabularies larger than this are left as classified
	// from the first file and flagged for manual curation.
	MaxCategoricalValues int

	Logger *slog.Logger
}

const (
	DefaultSampleRows            = 10000
	DefaultCategoricalSampleRows = 1000
	DefaultMaxCategoricalValues  = 50
)

// Builder runs classification across files and owns the resulting
// profile map until Build hands it to the caller.
type Builder struct {
	opts    Options
	missing map[string]struct{}
	logger  *slog.Logger
}

func NewBuilder(opts Options) *Builder {
	if opts.SampleRows <= 0 {
		opts.SampleRows = DefaultSampleRows
	}
	if opts.CategoricalSampleRows <= 0 {
		opts.CategoricalSampleRows = DefaultCategoricalSampleRows
	}
	if opts.MaxCategoricalValues <= 0 {
		opts.MaxCategoricalValues = DefaultMaxCategoricalValues
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Builder{
		opts:    opts,
		missing: profile.MissingTokenSet(opts.MissingTokens),
		logger:  logger,
	}
}

// Build classifies every variable across the given sources and returns
// the dictionary.
//
// Pass 1 walks the sources in order and classifies each variable from the
// first source that contains it; later sources only add provenance. The
// assigned type is never revisited, so a later file whose values disagree
// with the first file's type goes undetected — only categorical
// vocabularies are re-aggregated.
//
// Pass 2 re-scans every source for the variables classified categorical
// and replaces their vocabularies with the sorted union of observed
// values, unless the union exceeds MaxCategoricalValues, in which case
// the first-file vocabulary stays and the variable is flagged for review.
//
// Unreadable sources are logged and skipped; they never abort the build.
func (b *Builder) Build(ctx context.Context, sources []source.Source) (Dictionary, error) {
	dict := make(Dictionary)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		header, err := src.Header()
		if err != nil {
			b.logger.Warn("skipping unreadable source", "source", src.Name(), "error", err)
			continue
		}

		for _, name := range header {
			if v, ok := dict[name]; ok {
				v.AddFile(src.Name())
				continue
			}

			raw, err := src.Column(name, b.opts.SampleRows)
			if err != nil {
				b.logger.Warn("skipping unreadable column", "source", src.Name(), "column", name, "error", err)
				continue
			}

			col := profile.Clean(raw, b.missing)

			v := profile.Classify(name, col)
			v.Description = profile.Describe(name, v.Type)
			v.AddFile(src.Name())

			dict[name] = v

			b.logger.Debug("classified variable",
				"name", name,
				"type", v.Type.String(),
				"source", src.Name(),
			)
		}
	}

	if err := b.aggregateCategorical(ctx, dict, sources); err != nil {
		return nil, err
	}

	return dict, nil
}

// aggregateCategorical unions categorical vocabularies across all
// sources. Set union is commutative, so the per-source scans run
// concurrently and merge under a lock without affecting the result.
func (b *Builder) aggregateCategorical(ctx context.Context, dict Dictionary, sources []source.Source) error {
	var names []string
	for name, v := range dict {
		if v.Type == profile.CategoricalType {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	var mu sync.Mutex
	unions := make(map[string]map[string]struct{}, len(names))
	for _, name := range names {
		unions[name] = make(map[string]struct{})
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, src := range sources {
		src := src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			header, err := src.Header()
			if err != nil {
				b.logger.Warn("skipping source in categorical scan", "source", src.Name(), "error", err)
				return nil
			}

			present := make(map[string]struct{}, len(header))
			for _, h := range header {
				present[h] = struct{}{}
			}

			for _, name := range names {
				if _, ok := present[name]; !ok {
					continue
				}

				raw, err := src.Column(name, b.opts.CategoricalSampleRows)
				if err != nil {
					b.logger.Warn("skipping column in categorical scan", "source", src.Name(), "column", name, "error", err)
					continue
				}

				col := profile.Clean(raw, b.missing)

				mu.Lock()
				for _, v := range col.Values {
					unions[name][v] = struct{}{}
				}
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, name := range names {
		union := unions[name]
		if len(union) == 0 {
			continue
		}

		if len(union) > b.opts.MaxCategoricalValues {
			dict[name].NeedsReview = true
			b.logger.Warn("categorical vocabulary too large, keeping first-file values",
				"name", name,
				"distinct", len(union),
				"limit", b.opts.MaxCategoricalValues,
			)
			continue
		}

		values := make([]string, 0, len(union))
		for v := range union {
			values = append(values, v)
		}
		sort.Strings(values)

		vals := make([]profile.CategoricalValue, len(values))
		for i, s := range values {
			vals[i] = profile.CategoricalValue{Value: s, Label: s}
		}
		dict[name].Values = vals
	}

	return nil
}
