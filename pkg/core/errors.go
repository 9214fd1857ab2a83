package core

import (
	"fmt"
	"strings"
)

// ValidationError represents an error found while validating settings or inputs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// SchemaMismatchError reports an input whose schema differs from the declared one.
type SchemaMismatchError struct {
	Expected string
	Got      string
	Fields   []string // offending field paths
}

func (e *SchemaMismatchError) Error() string {
	msg := fmt.Sprintf("schema mismatch: expected %s, got %s", e.Expected, e.Got)
	if len(e.Fields) > 0 {
		msg += " (" + strings.Join(e.Fields, "; ") + ")"
	}
	return msg
}

// InvalidFattyAcidError is returned by ParseFattyAcid.
type InvalidFattyAcidError struct {
	Input  string
	Reason string
}

func (e *InvalidFattyAcidError) Error() string {
	return fmt.Sprintf("invalid fatty acid %q: %s", e.Input, e.Reason)
}

// MissingStandardError means the configured internal standard has no row.
type MissingStandardError struct {
	Label string
}

func (e *MissingStandardError) Error() string {
	return fmt.Sprintf("standard %q not found", e.Label)
}

// ThresholdMismatchError means a manual threshold does not cover every row.
type ThresholdMismatchError struct {
	Expected int
	Got      int
}

func (e *ThresholdMismatchError) Error() string {
	return fmt.Sprintf("manual threshold has %d entries, expected %d", e.Got, e.Expected)
}

// ComputeError wraps a failure inside a pipeline stage.
type ComputeError struct {
	Stage string
	Cause error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e *ComputeError) Unwrap() error {
	return e.Cause
}
