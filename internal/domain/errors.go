package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable signals an adapter-level fetch failure (network, auth,
	// timeout). The affected source is skipped for the cycle; the cycle continues.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedItem signals a single unparseable entry inside an adapter.
	// The entry is skipped; the adapter continues.
	ErrMalformedItem = errors.New("malformed item")
	// ErrPersistenceConflict signals a lost duplicate-insert race. Treated as a
	// successful dedup outcome, never surfaced as a failure.
	ErrPersistenceConflict = errors.New("persistence conflict")
	// ErrConfiguration signals missing or invalid configuration. Fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrItemNotFound signals a missing item.
	ErrItemNotFound = errors.New("item not found")
	// ErrSummaryNotFound signals that no cycle summary has been stored yet.
	ErrSummaryNotFound = errors.New("summary not found")
	// ErrInvalidFeedback signals a feedback record that failed validation.
	ErrInvalidFeedback = errors.New("invalid feedback")
	// ErrUnknownSourceKind signals a source kind with no registered adapter.
	ErrUnknownSourceKind = errors.New("unknown source kind")
)

// SourceError wraps ErrSourceUnavailable with the failing source name.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: source %q: %v", ErrSourceUnavailable.Error(), e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return ErrSourceUnavailable }

// NewSourceError marks a fetch failure as SourceUnavailable for one source.
func NewSourceError(source string, err error) error {
	return &SourceError{Source: source, Err: err}
}
