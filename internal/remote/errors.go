package remote

import (
	"context"
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorNone             ErrorKind = ""
	ErrorNotFound         ErrorKind = "bucket_or_path_not_found"
	ErrorPermissionDenied ErrorKind = "permission_denied"
	ErrorNetwork          ErrorKind = "network_failure"
	ErrorUnwritable       ErrorKind = "destination_unwritable"
	ErrorCancelled        ErrorKind = "cancelled"
	ErrorUnknown          ErrorKind = "unknown"
)

// Error carries the classified kind alongside the operation and path it
// came from, so callers can branch on kind without string matching.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the classified kind from an error chain. Plain context
// cancellation counts as cancelled; anything else unclassified is unknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorNone
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorCancelled
	}
	return ErrorUnknown
}

func IsCancelled(err error) bool {
	return KindOf(err) == ErrorCancelled
}

func IsNotFound(err error) bool {
	return KindOf(err) == ErrorNotFound
}
