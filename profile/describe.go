package profile

import (
	"fmt"
	"regexp"
)

// descriptionRule maps a name pattern to a canned sentence. The build
// function receives the regexp submatches for the handful of rules that
// interpolate part of the name.
type descriptionRule struct {
	pattern *regexp.Regexp
	build   func(m []string) string
}

func fixed(s string) func([]string) string {
	return func([]string) string { return s }
}

// descriptionRules is evaluated in order; the first matching rule wins.
// Specific rules sit above the generic ones, so e.g. trial_type is
// described as a trial descriptor and never falls through to the generic
// type rule further down.
var descriptionRules = []descriptionRule{
	// Identifiers.
	{regexp.MustCompile(`(?i)^(subject|participant)(_?id)?$`), fixed("Unique identifier for each participant")},
	{regexp.MustCompile(`(?i)^(session)(_?id)?$`), fixed("Identifier for the testing session")},
	{regexp.MustCompile(`(?i)^(run|record)(_?id)?$`), fixed("Identifier for the recording run")},
	{regexp.MustCompile(`(?i)(^id$|_id$)`), fixed("Unique identifier")},

	// Trial and timeline metadata.
	{regexp.MustCompile(`(?i)^trial_?type$`), fixed("Type of trial or plugin used to present the stimulus")},
	{regexp.MustCompile(`(?i)(trial_?(index|num(ber)?)|^trial$)`), fixed("Position of the trial within the experiment timeline")},
	{regexp.MustCompile(`(?i)(^block|_block)`), fixed("Block of trials the observation belongs to")},
	{regexp.MustCompile(`(?i)practice`), fixed("Whether the trial was part of the practice phase")},
	{regexp.MustCompile(`(?i)internal_node_id`), fixed("Internal timeline node identifier assigned by the presentation software")},

	// Timing.
	{regexp.MustCompile(`(?i)((^|[^a-z0-9])rt([^a-z0-9]|$)|reaction_time|response_time)`), fixed("Response time measured from stimulus onset")},
	{regexp.MustCompile(`(?i)(time_elapsed|elapsed_time)`), fixed("Time elapsed since the start of the experiment")},
	{regexp.MustCompile(`(?i)latency`), fixed("Latency of the recorded event")},
	{regexp.MustCompile(`(?i)duration`), fixed("Duration of the event or stimulus presentation")},

	// Stimulus and response.
	{regexp.MustCompile(`(?i)(stimulus|^stim(_|$))`), fixed("Stimulus presented on the trial")},
	{regexp.MustCompile(`(?i)(^response|^resp(_|$))`), fixed("Response given by the participant")},
	{regexp.MustCompile(`(?i)choice`), fixed("Option chosen by the participant")},
	{regexp.MustCompile(`(?i)(button|key_?press(ed)?|^key(_|$))`), fixed("Button or key pressed in response to the stimulus")},
	{regexp.MustCompile(`(?i)(correct|accuracy|(^|_)acc$)`), fixed("Whether the response was correct")},
	{regexp.MustCompile(`(?i)(score|points)`), fixed("Score earned by the participant")},

	// Design factors.
	{regexp.MustCompile(`(?i)condition`), fixed("Experimental condition assigned to the trial")},
	{regexp.MustCompile(`(?i)((^|_)group|(^|_)arm$)`), fixed("Group or study arm the participant was assigned to")},

	// Demographics.
	{regexp.MustCompile(`(?i)(^|[^a-z0-9])age([^a-z0-9]|$)`), fixed("Age of the participant")},
	{regexp.MustCompile(`(?i)(gender|^sex$)`), fixed("Gender reported by the participant")},
	{regexp.MustCompile(`(?i)education`), fixed("Highest education level reported by the participant")},
	{regexp.MustCompile(`(?i)handed`), fixed("Dominant hand reported by the participant")},
	{regexp.MustCompile(`(?i)(^|_)language`), fixed("Primary language reported by the participant")},

	// Bookkeeping.
	{regexp.MustCompile(`(?i)(date|timestamp|_time$)`), fixed("Date or time the observation was recorded")},
	{
		regexp.MustCompile(`(?i)^failed_(\w+)$`),
		func(m []string) string {
			return fmt.Sprintf("List of %s resources that failed to load", m[1])
		},
	},
}

// typeSentences are the fallback descriptions keyed by inferred type.
var typeSentences = map[Type]string{
	IntegerType:     "Numeric variable (whole numbers)",
	NumberType:      "Numeric variable (decimal numbers)",
	BooleanType:     "Boolean variable (true/false)",
	CategoricalType: "Categorical variable",
	StringType:      "Text variable",
}

// Describe produces a human-readable description for a variable from its
// name, falling back to a sentence derived from the inferred type when no
// name rule matches.
func Describe(name string, typ Type) string {
	for _, r := range descriptionRules {
		if m := r.pattern.FindStringSubmatch(name); m != nil {
			return r.build(m)
		}
	}

	return fmt.Sprintf("Variable: %s - %s", name, typeSentences[typ])
}
