package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferUnit(t *testing.T) {
	tests := map[string]struct {
		name string
		mean float64
		unit string
	}{
		"rt milliseconds":            {"rt", 450, "milliseconds"},
		"rt seconds":                 {"rt", 0.45, "seconds"},
		"rt with prefix":             {"trial_rt", 450, "milliseconds"},
		"rt not matched inside word": {"effort", 450, ""},
		"response time":              {"response_time", 300, "milliseconds"},
		"latency":                    {"latency", 20, "seconds"},
		"duration":                   {"stim_duration", 5000, "milliseconds"},
		"elapsed milliseconds":       {"time_elapsed", 90000, "milliseconds"},
		"elapsed seconds":            {"time_elapsed", 900, "seconds"},
		"age":                        {"age", 24, "years"},
		"age with suffix":            {"age_years", 24, "years"},
		"age not matched inside":     {"percentage", 50, "percent"},
		"score":                      {"test_score", 85, "points"},
		"rating":                     {"rating", 3.2, "points"},
		"proportion":                 {"pct_correct", 0.85, "proportion"},
		"percent":                    {"pct_correct", 85, "percent"},
		"no match":                   {"weight", 70, ""},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.unit, InferUnit(test.name, test.mean))
		})
	}
}

func TestInferUnitPrecedence(t *testing.T) {
	// The timing rule sits above the percent rule, so a name matching
	// both resolves by list order.
	assert.Equal(t, "milliseconds", InferUnit("rt_percent", 500))

	// The age rule sits above the percent rule.
	assert.Equal(t, "years", InferUnit("age_percent", 50))
}
