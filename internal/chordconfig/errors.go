package chordconfig

import (
	"errors"
	"fmt"
)

// Reason classifies why a configuration text was rejected.
type Reason int

const (
	// ReasonEmpty means the text was empty or whitespace only
	ReasonEmpty Reason = iota
	// ReasonSyntax means the text is not valid JSON
	ReasonSyntax
	// ReasonNotObject means the JSON value is an array, scalar or null
	ReasonNotObject
	// ReasonMissingField means a required field is absent
	ReasonMissingField
	// ReasonWrongType means a schema field holds a non-numeric value
	ReasonWrongType
)

// String returns a human-readable name for the reason
func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "empty configuration"
	case ReasonSyntax:
		return "invalid JSON"
	case ReasonNotObject:
		return "not a JSON object"
	case ReasonMissingField:
		return "missing field"
	case ReasonWrongType:
		return "wrong field type"
	default:
		return fmt.Sprintf("Reason(%d)", r)
	}
}

// ParseError is the explicit "invalid" signal returned by Parse.
type ParseError struct {
	Reason Reason // Why the text was rejected
	Field  string // Offending field, if any
	Got    string // JSON type found for Field (wrong type only)
	Err    error  // Underlying decoder error, if any
}

func (e *ParseError) Error() string {
	switch {
	case e.Field != "" && e.Got != "":
		return fmt.Sprintf("%s: %q must be a number, got %s", e.Reason, e.Field, e.Got)
	case e.Field != "":
		return fmt.Sprintf("%s: %q is required", e.Reason, e.Field)
	case e.Got != "":
		return fmt.Sprintf("%s (got %s)", e.Reason, e.Got)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	default:
		return e.Reason.String()
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err (or anything it wraps) is a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
