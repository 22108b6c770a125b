// Package errors defines the pipeline error taxonomy. Only three kinds of
// failure exist: schema errors (a required column is absent from an input
// file), data-integrity violations (derived values outside their declared
// bounds, indicating an upstream parsing bug), and identity-resolution
// mismatches (a participant present in one dataset but not another). The
// first two are fatal; the last is reported as counts and logged, since
// some attrition is expected.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SchemaError reports required columns missing from an input file.
// The missing list is always complete, not just the first hit.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: missing required columns: %s",
		e.File, strings.Join(e.Missing, ", "))
}

// NewSchemaError builds a SchemaError with a sorted, stable column list.
func NewSchemaError(file string, missing []string) *SchemaError {
	cols := make([]string, len(missing))
	copy(cols, missing)
	sort.Strings(cols)
	return &SchemaError{File: file, Missing: cols}
}

// IntegrityError reports a data value that violates a structural invariant
// of the experiment, such as a period index beyond the declared maximum for
// its round or a negative derived count. These indicate upstream bugs, not
// expected missingness, and abort the run.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string {
	return "data integrity violation: " + e.Message
}

// NewIntegrityError builds an IntegrityError with a formatted message.
func NewIntegrityError(format string, args ...any) *IntegrityError {
	return &IntegrityError{Message: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsIntegrityError reports whether err is or wraps an IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// MergeReport summarizes an identity-resolution join. Unmatched players are
// a data-quality warning, never a fatal error; RowsBefore and RowsAfter let
// callers assert the left-join row-count invariant.
type MergeReport struct {
	RowsBefore       int
	RowsAfter        int
	UnmatchedPlayers []string
}

// Unmatched returns the number of players without a match.
func (r *MergeReport) Unmatched() int {
	return len(r.UnmatchedPlayers)
}

// RowCountPreserved reports whether the join kept exactly one output row per
// input row, the contract of every trait merge.
func (r *MergeReport) RowCountPreserved() bool {
	return r.RowsBefore == r.RowsAfter
}
