package datadict

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psych-ds/psychds-r-sub000/profile"
	"github.com/psych-ds/psychds-r-sub000/source"
	"github.com/psych-ds/psychds-r-sub000/testutil"
)

// memSource is an in-memory Source for exercising the builder without
// touching the filesystem.
type memSource struct {
	name   string
	header []string
	cols   map[string][]string
	err    error
}

func (s *memSource) Name() string { return s.name }

func (s *memSource) Header() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.header, nil
}

func (s *memSource) Column(name string, maxRows int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}

	values, ok := s.cols[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found in %s", name, s.name)
	}

	if maxRows > 0 && len(values) > maxRows {
		values = values[:maxRows]
	}
	return values, nil
}

func newBuilder(t *testing.T, opts Options) *Builder {
	t.Helper()
	opts.Logger = testutil.NewTestLogger(t)
	return NewBuilder(opts)
}

func TestBuildClassifiesEachVariableOnce(t *testing.T) {
	a := &memSource{
		name:   "a.csv",
		header: []string{"participant_id", "rt", "condition"},
		cols: map[string][]string{
			"participant_id": {"p1", "p2", "p3"},
			"rt":             {"250.5", "310.2", "198.0"},
			"condition":      {"1", "2", "1"},
		},
	}
	b := &memSource{
		name:   "b.csv",
		header: []string{"participant_id", "rt"},
		cols: map[string][]string{
			"participant_id": {"p4", "p5"},
			"rt":             {"5000", "6000"},
		},
	}

	dict, err := newBuilder(t, Options{}).Build(context.Background(), []source.Source{a, b})
	require.NoError(t, err)
	require.Len(t, dict, 3)

	rt := dict["rt"]
	require.NotNil(t, rt)
	assert.Equal(t, profile.NumberType, rt.Type)
	// Classified from a.csv only: b.csv's larger values do not widen
	// the range.
	assert.Equal(t, "198", rt.MinValue)
	assert.Equal(t, "310.2", rt.MaxValue)
	assert.Equal(t, "milliseconds", rt.Unit)
	assert.Equal(t, []string{"a.csv", "b.csv"}, rt.Files)

	pid := dict["participant_id"]
	require.NotNil(t, pid)
	assert.Equal(t, profile.StringType, pid.Type)
	assert.True(t, pid.Unique)
	assert.Equal(t, "Unique identifier for each participant", pid.Description)

	cond := dict["condition"]
	require.NotNil(t, cond)
	assert.Equal(t, profile.CategoricalType, cond.Type)
	assert.Equal(t, []string{"a.csv"}, cond.Files)
}

func TestBuildFirstFileTypeIsAuthoritative(t *testing.T) {
	a := &memSource{
		name:   "a.csv",
		header: []string{"age"},
		cols:   map[string][]string{"age": {"21", "34", "28"}},
	}
	b := &memSource{
		name:   "b.csv",
		header: []string{"age"},
		cols:   map[string][]string{"age": {"twenty", "unknown", "old"}},
	}

	dict, err := newBuilder(t, Options{}).Build(context.Background(), []source.Source{a, b})
	require.NoError(t, err)

	// b.csv's incompatible values are never reconciled against the
	// type assigned from a.csv.
	age := dict["age"]
	assert.Equal(t, profile.IntegerType, age.Type)
	assert.Equal(t, "years", age.Unit)
	assert.Equal(t, []string{"a.csv", "b.csv"}, age.Files)
}

func TestBuildCategoricalUnion(t *testing.T) {
	a := &memSource{
		name:   "a.csv",
		header: []string{"condition"},
		cols:   map[string][]string{"condition": {"1", "2", "1", "2"}},
	}
	b := &memSource{
		name:   "b.csv",
		header: []string{"condition"},
		cols:   map[string][]string{"condition": {"2", "3", "3"}},
	}

	dict, err := newBuilder(t, Options{}).Build(context.Background(), []source.Source{a, b})
	require.NoError(t, err)

	cond := dict["condition"]
	require.Equal(t, profile.CategoricalType, cond.Type)
	require.Len(t, cond.Values, 3)

	var values []string
	for _, cv := range cond.Values {
		values = append(values, cv.Value)
		assert.Equal(t, cv.Value, cv.Label)
	}
	assert.Equal(t, []string{"1", "2", "3"}, values)
	assert.False(t, cond.NeedsReview)
}

func TestBuildOversizedVocabularyFlagged(t *testing.T) {
	big := make([]string, 10)
	for i := range big {
		big[i] = fmt.Sprintf("site-%d", i)
	}

	a := &memSource{
		name:   "a.csv",
		header: []string{"condition"},
		cols:   map[string][]string{"condition": {"red", "blue", "red"}},
	}
	b := &memSource{
		name:   "b.csv",
		header: []string{"condition"},
		cols:   map[string][]string{"condition": big},
	}

	dict, err := newBuilder(t, Options{MaxCategoricalValues: 5}).
		Build(context.Background(), []source.Source{a, b})
	require.NoError(t, err)

	cond := dict["condition"]
	assert.True(t, cond.NeedsReview)

	// The first-file vocabulary is left untouched.
	require.Len(t, cond.Values, 2)
	assert.Equal(t, "blue", cond.Values[0].Value)
	assert.Equal(t, "red", cond.Values[1].Value)
}

func TestBuildSkipsBrokenSource(t *testing.T) {
	broken := &memSource{
		name: "broken.csv",
		err:  fmt.Errorf("malformed header"),
	}
	ok := &memSource{
		name:   "ok.csv",
		header: []string{"score"},
		cols:   map[string][]string{"score": {"10", "20", "15"}},
	}

	dict, err := newBuilder(t, Options{}).
		Build(context.Background(), []source.Source{broken, ok})
	require.NoError(t, err)

	require.Len(t, dict, 1)
	assert.Equal(t, profile.IntegerType, dict["score"].Type)
	assert.Equal(t, []string{"ok.csv"}, dict["score"].Files)
}

func TestBuildHonorsSampleLimit(t *testing.T) {
	src := &memSource{
		name:   "a.csv",
		header: []string{"weight"},
		cols:   map[string][]string{"weight": {"60", "70", "not-a-number"}},
	}

	dict, err := newBuilder(t, Options{SampleRows: 2}).
		Build(context.Background(), []source.Source{src})
	require.NoError(t, err)

	// Only the first two rows were sampled, so the column is fully
	// numeric.
	assert.Equal(t, profile.IntegerType, dict["weight"].Type)
	assert.Equal(t, "70", dict["weight"].MaxValue)
}

func TestBuildCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &memSource{
		name:   "a.csv",
		header: []string{"x"},
		cols:   map[string][]string{"x": {"1"}},
	}

	_, err := newBuilder(t, Options{}).Build(ctx, []source.Source{src})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildMissingTokensConfigurable(t *testing.T) {
	src := &memSource{
		name:   "a.csv",
		header: []string{"score"},
		cols:   map[string][]string{"score": {"1", "2", "except", "3"}},
	}

	dict, err := newBuilder(t, Options{MissingTokens: []string{"except"}}).
		Build(context.Background(), []source.Source{src})
	require.NoError(t, err)

	// "except" was dropped as missing, so the column parses fully
	// numeric; had it survived, the 3/4 parse ratio would have fallen
	// through to the categorical path.
	assert.Equal(t, profile.IntegerType, dict["score"].Type)
	assert.False(t, dict["score"].Required)
}

func TestDictionaryVariablesSorted(t *testing.T) {
	dict := Dictionary{
		"b": &profile.Variable{Name: "b"},
		"a": &profile.Variable{Name: "a"},
		"c": &profile.Variable{Name: "c"},
	}

	vars := dict.Variables()
	require.Len(t, vars, 3)
	assert.Equal(t, "a", vars[0].Name)
	assert.Equal(t, "b", vars[1].Name)
	assert.Equal(t, "c", vars[2].Name)
}
