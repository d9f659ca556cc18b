package darwinfetch

import (
	"errors"
	"fmt"
)

// ErrCanceled is returned when the user backs out of a selection prompt.
var ErrCanceled = errors.New("canceled by user")

// ParseError reports a catalog or settings document that is not valid JSON
// for its schema. The on-disk file is left untouched.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError reports a missing catalog, remote or destination.
type NotFoundError struct {
	What string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s not found", e.What)
	}
	return fmt.Sprintf("%s not found: %s", e.What, e.Path)
}

// ChoiceError reports a selection that is non-numeric or out of range.
type ChoiceError struct {
	Input  string
	Reason string
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("invalid choice %q: %s", e.Input, e.Reason)
}

// DownloadError wraps any transport or HTTP failure for a single URL.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ExternalToolError reports a failed recovery tool invocation.
type ExternalToolError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *ExternalToolError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("recovery tool failed (exit status %d) for %q: %v", e.ExitCode, e.Command, e.Err)
	}
	return fmt.Sprintf("recovery tool failed for %q: %v", e.Command, e.Err)
}

func (e *ExternalToolError) Unwrap() error { return e.Err }
