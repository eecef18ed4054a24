package profile

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Thresholds used by the detector chain.
const (
	// Completeness above which a variable is marked required.
	requiredCompleteness = 0.95

	// Minimum fraction of clean values that must parse as numbers for
	// the numeric detector to claim the column.
	numericParseRatio = 0.90

	// Number of leading values the JSON-string detector inspects.
	jsonProbeLimit = 100

	// Cell-length guards above which a column is plain text regardless
	// of its cardinality.
	maxMeanCellLength = 50
	maxCellLength     = 200

	// Cardinality and length limits for the categorical fallback.
	maxCategoryCount      = 20
	maxShortCategoryCount = 10
	maxMeanCategoryLength = 30
	minCategoricalRows    = 20
	lowUniquenessRatio    = 0.05
)

// A detector inspects one column and either claims it, filling in the
// type-specific fields of v, or declines by returning false.
type detector struct {
	name   string
	detect func(name string, col Column, v *Variable) bool
}

// detectors is the classification chain. Order is load-bearing: the first
// detector that claims a column terminates evaluation, which is how
// ambiguous columns (identifier-shaped numbers, 0/1 booleans) are resolved.
var detectors = []detector{
	{"identifier", detectIdentifier},
	{"json-string", detectJSONString},
	{"boolean", detectBoolean},
	{"numeric", detectNumeric},
	{"string-categorical", detectStringOrCategorical},
}

// Classify assigns a type and its type-specific attributes to a cleaned
// column. The final detector accepts everything, so a type is always
// assigned. An empty column yields a degenerate string profile.
func Classify(name string, col Column) *Variable {
	v := &Variable{
		Name:     name,
		Required: col.Completeness > requiredCompleteness,
	}

	if col.NClean == 0 {
		v.Type = StringType
		return v
	}

	v.Unique = col.NUnique == col.NClean

	for _, d := range detectors {
		if d.detect(name, col, v) {
			break
		}
	}

	return v
}

// detectIdentifier claims columns whose name looks like a record
// identifier and whose values are mostly distinct. Identifiers are plain
// strings and are forced unique even when the sample repeats values.
func detectIdentifier(name string, col Column, v *Variable) bool {
	if !identifierNames.MatchString(name) {
		return false
	}

	if col.UniquenessRatio <= 0.5 && float64(col.NUnique) < float64(col.NClean)*0.5 {
		return false
	}

	v.Type = StringType
	v.Unique = true

	return true
}

// detectJSONString claims columns whose leading values all carry JSON
// array or object delimiters. The content is not parsed, only the shape
// is recorded as a pattern hint.
func detectJSONString(name string, col Column, v *Variable) bool {
	probe := col.Values
	if len(probe) > jsonProbeLimit {
		probe = probe[:jsonProbeLimit]
	}

	if allMatch(jsonArrayShape, probe) {
		v.Type = StringType
		v.Pattern = "JSON array"
		return true
	}

	if allMatch(jsonObjectShape, probe) {
		v.Type = StringType
		v.Pattern = "JSON object"
		return true
	}

	return false
}

// Distinct-value pairs recognized as text booleans, each encoded as the
// sorted lower-cased values joined by "|".
var booleanPairs = map[string]struct{}{
	"false|true": {},
	"f|t":        {},
	"n|y":        {},
	"no|yes":     {},
}

var booleanSingles = map[string]struct{}{
	"true": {}, "false": {},
	"yes": {}, "no": {},
	"t": {}, "f": {},
	"y": {}, "n": {},
}

// detectBoolean claims two-valued columns with boolean-looking values.
// A bare {0,1} pair only counts when the name suggests an outcome flag
// and does not suggest a response option, so 0/1-coded response columns
// fall through to the numeric detector instead.
func detectBoolean(name string, col Column, v *Variable) bool {
	if col.NUnique > 2 {
		return false
	}

	distinct := col.Distinct()

	lower := make([]string, len(distinct))
	for i, s := range distinct {
		lower[i] = strings.ToLower(s)
	}
	sort.Strings(lower)
	key := strings.Join(lower, "|")

	var ok bool

	switch len(lower) {
	case 1:
		_, ok = booleanSingles[key]
	case 2:
		if _, ok = booleanPairs[key]; !ok && key == "0|1" {
			ok = booleanNames.MatchString(name) && !responseNames.MatchString(name)
		}
	}

	if !ok {
		return false
	}

	v.Type = BooleanType
	v.Values = categoricalValues(distinct)

	return true
}

// detectNumeric claims columns where at least 90% of the clean values
// parse as decimal numbers. Small contiguous integer code sets with a
// category-suggestive name (or exactly two codes) are reported as
// categorical rather than numeric.
func detectNumeric(name string, col Column, v *Variable) bool {
	parsed := make([]float64, 0, col.NClean)
	for _, s := range col.Values {
		if f, ok := ParseNumber(s); ok {
			parsed = append(parsed, f)
		}
	}

	if len(parsed) == 0 {
		return false
	}

	if float64(len(parsed))/float64(col.NClean) < numericParseRatio {
		return false
	}

	whole := true
	for _, f := range parsed {
		if !isWhole(f) {
			whole = false
			break
		}
	}

	codes := distinctFloats(parsed)

	if whole && isCodedCategory(name, codes) {
		labels := make([]string, len(codes))
		for i, f := range codes {
			labels[i] = FormatNumber(f)
		}

		v.Type = CategoricalType
		v.Values = categoricalValues(labels)

		return true
	}

	if whole {
		v.Type = IntegerType
	} else {
		v.Type = NumberType
	}

	min, max, sum := parsed[0], parsed[0], 0.0
	for _, f := range parsed {
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		sum += f
	}

	v.MinValue = FormatNumber(min)
	v.MaxValue = FormatNumber(max)
	v.Unit = InferUnit(name, sum/float64(len(parsed)))

	return true
}

// isCodedCategory reports whether sorted distinct integer values form a
// small contiguous code set (step 1, within [0,10]) that should be read
// as categories instead of measurements.
func isCodedCategory(name string, codes []float64) bool {
	if len(codes) == 0 || len(codes) > 3 {
		return false
	}

	if codes[0] < 0 || codes[len(codes)-1] > 10 {
		return false
	}

	for i := 1; i < len(codes); i++ {
		if codes[i]-codes[i-1] != 1 {
			return false
		}
	}

	return codedCategoryNames.MatchString(name) || len(codes) == 2
}

// detectStringOrCategorical is the terminal detector: everything the
// numeric detector declined is either a closed text vocabulary or plain
// text. Long cells are never categorical.
func detectStringOrCategorical(name string, col Column, v *Variable) bool {
	var total, longest int
	for _, s := range col.Values {
		n := utf8.RuneCountInString(s)
		total += n
		if n > longest {
			longest = n
		}
	}

	if float64(total)/float64(col.NClean) > maxMeanCellLength || longest > maxCellLength {
		v.Type = StringType
		return true
	}

	distinct := col.Distinct()

	categorical := false
	switch {
	case categoryNames.MatchString(name) && col.NUnique <= maxCategoryCount:
		categorical = true

	case col.NUnique >= 2 && col.NUnique <= maxCategoryCount &&
		col.UniquenessRatio < lowUniquenessRatio && col.NClean >= minCategoricalRows:
		categorical = true

	case col.NUnique >= 2 && col.NUnique <= maxShortCategoryCount &&
		meanRuneLength(distinct) < maxMeanCategoryLength:
		categorical = true
	}

	if categorical {
		v.Type = CategoricalType
		v.Values = categoricalValues(distinct)
	} else {
		v.Type = StringType
	}

	return true
}

func allMatch(re *regexp.Regexp, values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, s := range values {
		if !re.MatchString(s) {
			return false
		}
	}
	return true
}

func distinctFloats(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	out := make([]float64, 0, len(values))

	for _, f := range values {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	sort.Float64s(out)
	return out
}

func meanRuneLength(values []string) float64 {
	if len(values) == 0 {
		return 0
	}

	var total int
	for _, s := range values {
		total += utf8.RuneCountInString(s)
	}

	return float64(total) / float64(len(values))
}
