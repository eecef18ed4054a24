package profile

import "regexp"

// Name pattern sets used by the detectors. Each is a single package-level
// compiled alternation so rules can be tested for false positives and
// negatives independently of the detector chain. All matching is done
// against the raw variable name, case-insensitively.
var (
	// Names that identify a record rather than measure something.
	// "key" is anchored so response columns like response_key stay out
	// of identifier territory and reach the numeric detector.
	identifierNames = regexp.MustCompile(`(?i)(\bids?\b|_id$|^id_|uuid|guid|^key$|code$|^subject|^participant|^child_id|^session_id|^trial_id|^user_id|^record_id)`)

	// Names that suggest a 0/1 column encodes a true/false outcome.
	booleanNames = regexp.MustCompile(`(?i)(correct|success|valid|complete|finished|done|failed|error|timeout|flag|^is_|^has_|^was_)`)

	// Names that suggest a 0/1 column encodes a response option instead.
	// Overrides booleanNames so 0/1-coded response and key-press columns
	// are not misread as booleans.
	responseNames = regexp.MustCompile(`(?i)(response|resp|choice|button|key|answer|select)`)

	// Names that make a small contiguous integer code set categorical.
	codedCategoryNames = regexp.MustCompile(`(?i)(group|condition|treatment|category|type|class|level|factor|arm)`)

	// Names that make a small text vocabulary categorical.
	categoryNames = regexp.MustCompile(`(?i)(condition|group|treatment|arm|category|type|class|level|factor|status|state|phase|wave|cohort)`)
)

// Cell shape patterns used by the JSON-string detector.
var (
	jsonArrayShape  = regexp.MustCompile(`(?s)^\[.*\]$`)
	jsonObjectShape = regexp.MustCompile(`(?s)^\{.*\}$`)
)
