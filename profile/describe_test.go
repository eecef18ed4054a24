package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := map[string]struct {
		name string
		typ  Type
		want string
	}{
		"participant": {
			"participant_id", StringType,
			"Unique identifier for each participant",
		},
		"subject": {
			"subject", StringType,
			"Unique identifier for each participant",
		},
		"generic id": {
			"stimulus_set_id", StringType,
			"Unique identifier",
		},
		"trial type": {
			"trial_type", CategoricalType,
			"Type of trial or plugin used to present the stimulus",
		},
		"trial index": {
			"trial_index", IntegerType,
			"Position of the trial within the experiment timeline",
		},
		"response time": {
			"response_time", NumberType,
			"Response time measured from stimulus onset",
		},
		"rt": {
			"rt", NumberType,
			"Response time measured from stimulus onset",
		},
		"time elapsed": {
			"time_elapsed", IntegerType,
			"Time elapsed since the start of the experiment",
		},
		"accuracy": {
			"is_correct", BooleanType,
			"Whether the response was correct",
		},
		"condition": {
			"condition", CategoricalType,
			"Experimental condition assigned to the trial",
		},
		"age": {
			"age", IntegerType,
			"Age of the participant",
		},
		"failed images": {
			"failed_images", StringType,
			"List of images resources that failed to load",
		},
		"failed audio": {
			"failed_audio", StringType,
			"List of audio resources that failed to load",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, Describe(test.name, test.typ))
		})
	}
}

func TestDescribePrecedence(t *testing.T) {
	// response_time must resolve to the timing rule, not the response
	// rule further down and never the type fallback.
	assert.Equal(t,
		"Response time measured from stimulus onset",
		Describe("response_time", NumberType),
	)

	// participant_id hits the participant rule before the generic
	// identifier rule.
	assert.Equal(t,
		"Unique identifier for each participant",
		Describe("participant_id", StringType),
	)
}

func TestDescribeFallback(t *testing.T) {
	tests := map[Type]string{
		IntegerType:     "Variable: zorp - Numeric variable (whole numbers)",
		NumberType:      "Variable: zorp - Numeric variable (decimal numbers)",
		BooleanType:     "Variable: zorp - Boolean variable (true/false)",
		CategoricalType: "Variable: zorp - Categorical variable",
		StringType:      "Variable: zorp - Text variable",
	}

	for typ, want := range tests {
		assert.Equal(t, want, Describe("zorp", typ))
	}
}
