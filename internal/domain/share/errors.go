package share

import (
	"errors"
	"fmt"
)

// Kind classifies share failures so transports can map them to status codes.
type Kind string

const (
	KindAccessDenied       Kind = "access_denied"
	KindNotFound           Kind = "not_found"
	KindNotADirectory      Kind = "not_a_directory"
	KindIsADirectory       Kind = "is_a_directory"
	KindTooLarge           Kind = "too_large"
	KindConfigurationError Kind = "configuration_error"
	KindUnsupportedFile    Kind = "unsupported_file"
	KindUnavailable        Kind = "unavailable"
	KindInvalidArgument    Kind = "invalid_argument"
	KindInternal           Kind = "internal"
)

// Sentinel errors reported by metadata extractors.
var (
	ErrParseFailure         = errors.New("unable to parse file")
	ErrExtractorUnavailable = errors.New("metadata extraction is not available")
)

// Error wraps a share failure with the operation and offending path.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of a share error, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var shareErr *Error
	if errors.As(err, &shareErr) {
		return shareErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a share error of the given kind.
func IsKind(err error, kind Kind) bool {
	var shareErr *Error
	return errors.As(err, &shareErr) && shareErr.Kind == kind
}

func IsAccessDenied(err error) bool {
	return IsKind(err, KindAccessDenied)
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}
