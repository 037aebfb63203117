// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import "errors"

// Failure categories. Resolvers wrap these with %w so callers can classify
// a job's failure with errors.Is without parsing message text.
var (
	// ErrFetch covers network failures, non-2xx statuses and wrong
	// content types. The single fetch is not retried.
	ErrFetch = errors.New("fetch failed")

	// ErrExtraction covers responses that arrived but yielded no usable
	// signals (unparseable registrar record, empty Atom feed).
	ErrExtraction = errors.New("extraction failed")

	// ErrValidation covers synthesized records that are missing the
	// fields a record must have (title, url).
	ErrValidation = errors.New("validation failed")

	// ErrSerialization marks a record that failed the parse-back check.
	// It indicates an internal bug, never bad input, and is always
	// reported rather than swallowed.
	ErrSerialization = errors.New("serialization failed")
)

// UnrecognizedError reports an input no family claimed.
type UnrecognizedError struct {
	Input string
}

func (e *UnrecognizedError) Error() string {
	return "unrecognized identifier: " + e.Input
}
