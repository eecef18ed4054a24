// Package profile infers variable-level metadata from raw column values.
//
// Given the string cells of a column (and the column's name), the package
// decides the variable's semantic type, its value constraints, its
// categorical vocabulary, a measurement unit, and a human-readable
// description. All functions are pure; the caller owns the resulting
// Variable values.
package profile

import (
	"encoding/json"
	"strings"
)

const (
	UnknownType Type = iota
	StringType
	IntegerType
	NumberType
	BooleanType
	CategoricalType
)

// Type is the semantic type of a variable.
type Type uint8

func (t Type) String() string {
	switch t {
	case StringType:
		return "string"
	case IntegerType:
		return "integer"
	case NumberType:
		return "number"
	case BooleanType:
		return "boolean"
	case CategoricalType:
		return "categorical"
	}

	return ""
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	var v Type

	switch strings.ToLower(s) {
	case "string":
		v = StringType
	case "integer":
		v = IntegerType
	case "number":
		v = NumberType
	case "boolean":
		v = BooleanType
	case "categorical":
		v = CategoricalType
	}

	*t = v

	return nil
}

// CategoricalValue is one member of a variable's closed vocabulary.
type CategoricalValue struct {
	// The literal value as it appears in the data.
	Value string `json:"value"`

	// Display label. Defaults to the value itself.
	Label string `json:"label"`

	// Optional free-text description of the value.
	Description string `json:"description,omitempty"`
}

// Variable is the profile of one named column across a dataset. Field
// names follow the Schema.org PropertyValue shape so the profile can be
// dropped into a variableMeasured array as-is.
type Variable struct {
	// Name of the variable as it appears in file headers.
	Name string `json:"name"`

	// Inferred semantic type.
	Type Type `json:"valueType"`

	// Measurement unit for numeric variables, empty if not applicable.
	Unit string `json:"unitText,omitempty"`

	// String-encoded range bounds, set for numeric types only.
	MinValue string `json:"minValue,omitempty"`
	MaxValue string `json:"maxValue,omitempty"`

	// Closed vocabulary for categorical and boolean variables, sorted.
	Values []CategoricalValue `json:"valueReference,omitempty"`

	// True when more than 95% of sampled cells are non-missing.
	Required bool `json:"required"`

	// True when every non-missing sampled value is distinct.
	Unique bool `json:"unique"`

	// Free-text value shape hint, e.g. "JSON array".
	Pattern string `json:"pattern,omitempty"`

	// Generated human-readable description.
	Description string `json:"description,omitempty"`

	// Identifiers of the files the variable appears in, in encounter order.
	Files []string `json:"files,omitempty"`

	// Set when the aggregated categorical vocabulary exceeded the
	// configured limit and was left as first-file values for manual
	// curation.
	NeedsReview bool `json:"needsReview,omitempty"`
}

// AddFile records provenance. Adding the same file twice is a no-op.
func (v *Variable) AddFile(id string) {
	for _, f := range v.Files {
		if f == id {
			return
		}
	}
	v.Files = append(v.Files, id)
}

// categoricalValues wraps sorted distinct values in the vocabulary shape,
// with the label defaulting to the value.
func categoricalValues(values []string) []CategoricalValue {
	out := make([]CategoricalValue, len(values))
	for i, s := range values {
		out[i] = CategoricalValue{Value: s, Label: s}
	}
	return out
}
