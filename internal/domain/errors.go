package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks a feed that could not be fetched or read.
	// It is fatal for the run.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedRecord marks a single row that failed normalization.
	// Ingestion absorbs it by dropping the row.
	ErrMalformedRecord = errors.New("malformed record")
)

// RowError describes why a feed row was dropped.
type RowError struct {
	Line   int
	Column Column
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("line %d: %s %q", e.Line, e.Column, e.Value)
	}
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

// Is lets errors.Is(err, ErrMalformedRecord) match every RowError.
func (e *RowError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *RowError) Unwrap() error {
	return e.Err
}
