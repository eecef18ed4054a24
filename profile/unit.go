package profile

import "regexp"

// unitRule maps a name pattern to a unit, optionally switching on the
// magnitude of the column mean.
type unitRule struct {
	pattern *regexp.Regexp
	unit    func(mean float64) string
}

// unitRules is evaluated in order; the first matching rule wins. Timing
// fields switch between milliseconds and seconds on the mean because the
// same column names are used for both in the wild.
var unitRules = []unitRule{
	{
		pattern: regexp.MustCompile(`(?i)((^|[^a-z0-9])rt([^a-z0-9]|$)|reaction_time|response_time|latency|duration)`),
		unit: func(mean float64) string {
			if mean > 100 {
				return "milliseconds"
			}
			return "seconds"
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)(time_elapsed|elapsed_time)`),
		unit: func(mean float64) string {
			if mean > 1000 {
				return "milliseconds"
			}
			return "seconds"
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)(^|[^a-z0-9])age([^a-z0-9]|$)`),
		unit:    func(float64) string { return "years" },
	},
	{
		pattern: regexp.MustCompile(`(?i)(score|rating|points)`),
		unit:    func(float64) string { return "points" },
	},
	{
		pattern: regexp.MustCompile(`(?i)(percent|pct|proportion)`),
		unit: func(mean float64) string {
			if mean <= 1 {
				return "proportion"
			}
			return "percent"
		},
	},
}

// InferUnit guesses a measurement unit for a numeric variable from its
// name and the mean of its parsed values. Returns "" when no rule matches.
func InferUnit(name string, mean float64) string {
	for _, r := range unitRules {
		if r.pattern.MatchString(name) {
			return r.unit(mean)
		}
	}

	return ""
}
