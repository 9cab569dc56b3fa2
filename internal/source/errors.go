// Package source loads catalogs and sales records from files and databases.
package source

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is returned when a source cannot be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSourceFormat is returned when a source is readable but its content cannot be parsed.
	ErrSourceFormat = errors.New("malformed source data")
)

// SourceUnavailableError reports a missing or unreadable source.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Source, e.Err)
}

// Is matches ErrSourceUnavailable.
func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// SourceFormatError reports unparseable source content.
type SourceFormatError struct {
	Source string
	Err    error
}

func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceFormat, e.Source, e.Err)
}

// Is matches ErrSourceFormat.
func (e *SourceFormatError) Is(target error) bool { return target == ErrSourceFormat }

func (e *SourceFormatError) Unwrap() error { return e.Err }
