package models

import (
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a TypedValue.
type ValueKind string

const (
	ValueEmpty  ValueKind = "empty"
	ValueNumber ValueKind = "number"
	ValueText   ValueKind = "text"
	ValueBool   ValueKind = "bool"
	ValueError  ValueKind = "error"
)

// errorTokens is the set of spreadsheet error markers recognized in
// evaluated cell values.
var errorTokens = map[string]struct{}{
	"#DIV/0!": {},
	"#N/A":    {},
	"#NAME?":  {},
	"#NULL!":  {},
	"#NUM!":   {},
	"#REF!":   {},
	"#VALUE!": {},
	"#SPILL!": {},
}

// TypedValue is the tagged variant for one evaluated cell: number, text,
// boolean, error token, or empty. Detectors switch exhaustively on Kind.
type TypedValue struct {
	// Kind selects which of the payload fields is meaningful.
	Kind ValueKind `json:"kind"`
	// Number holds the numeric payload when Kind is ValueNumber.
	Number float64 `json:"number,omitempty"`
	// Text holds the string payload when Kind is ValueText, and the raw
	// error token when Kind is ValueError.
	Text string `json:"text,omitempty"`
	// Bool holds the boolean payload when Kind is ValueBool.
	Bool bool `json:"bool,omitempty"`
}

// ParseValue classifies a raw evaluated cell string into a TypedValue.
// Classification order: empty, error token, boolean, number, text.
func ParseValue(raw string) TypedValue {
	if raw == "" {
		return TypedValue{Kind: ValueEmpty}
	}
	if _, ok := errorTokens[raw]; ok {
		return TypedValue{Kind: ValueError, Text: raw}
	}
	switch raw {
	case "TRUE":
		return TypedValue{Kind: ValueBool, Bool: true}
	case "FALSE":
		return TypedValue{Kind: ValueBool, Bool: false}
	}
	if n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
		return TypedValue{Kind: ValueNumber, Number: n}
	}
	return TypedValue{Kind: ValueText, Text: raw}
}

// IsErrorToken reports whether s is a recognized spreadsheet error marker.
func IsErrorToken(s string) bool {
	_, ok := errorTokens[s]
	return ok
}

// Display renders the value the way it appeared in the workbook, for use
// in issue evidence.
func (v TypedValue) Display() string {
	switch v.Kind {
	case ValueEmpty:
		return ""
	case ValueNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return v.Text
	}
}
