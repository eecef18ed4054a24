package profile

import (
	"sort"
	"strings"
)

// DefaultMissingTokens are the literal strings treated as absent data when
// no explicit token set is configured. Matching is case-sensitive, which is
// why the common casings are enumerated.
var DefaultMissingTokens = []string{
	"", "NA", "N/A", "na", "n/a",
	"null", "NULL", "Null",
	"None", "none", "NONE",
	"undefined", "NaN", "-999", "missing", ".", "-",
}

// MissingTokenSet builds the set form of a missing-token list. A nil or
// empty list yields the default set.
func MissingTokenSet(tokens []string) map[string]struct{} {
	if len(tokens) == 0 {
		tokens = DefaultMissingTokens
	}

	s := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}

	return s
}

// Column holds the cleaned cells of one column plus the counts the
// detectors key off of.
type Column struct {
	// Non-missing values, trimmed, in row order.
	Values []string

	// Cell counts before and after missing-value removal.
	NTotal int
	NClean int

	// Number of distinct clean values.
	NUnique int

	// NUnique / NClean, 0 when the column is empty.
	UniquenessRatio float64

	// NClean / NTotal, 0 when the column has no rows.
	Completeness float64
}

// Clean trims every cell, drops missing values, and computes the column
// counts. A cell is missing when its trimmed form is empty or a
// case-sensitive member of the token set. Order of surviving values is
// preserved.
func Clean(raw []string, missing map[string]struct{}) Column {
	if missing == nil {
		missing = MissingTokenSet(nil)
	}

	col := Column{NTotal: len(raw)}

	distinct := make(map[string]struct{})

	for _, cell := range raw {
		v := strings.TrimSpace(cell)
		if v == "" {
			continue
		}
		if _, ok := missing[v]; ok {
			continue
		}

		col.Values = append(col.Values, v)
		distinct[v] = struct{}{}
	}

	col.NClean = len(col.Values)
	col.NUnique = len(distinct)

	if col.NClean > 0 {
		col.UniquenessRatio = float64(col.NUnique) / float64(col.NClean)
	}
	if col.NTotal > 0 {
		col.Completeness = float64(col.NClean) / float64(col.NTotal)
	}

	return col
}

// Distinct returns the distinct clean values in lexicographic order.
func (c Column) Distinct() []string {
	seen := make(map[string]struct{}, c.NUnique)
	out := make([]string, 0, c.NUnique)

	for _, v := range c.Values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	sort.Strings(out)
	return out
}
