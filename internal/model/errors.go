package model

import "errors"

// ErrorKind classifies failures that abort a run.
type ErrorKind int

const (
	// KindNetwork is a transport failure or non-200 status on a stylesheet fetch.
	KindNetwork ErrorKind = iota + 1

	// KindParse means a provider response is not a usable stylesheet.
	KindParse

	// KindValidation means the run options were rejected.
	KindValidation

	// KindDownload means a font file could not be fetched or saved.
	KindDownload

	// KindWrite means the generated stylesheet could not be persisted.
	KindWrite
)

// String returns the human readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindParse:
		return "parse error"
	case KindValidation:
		return "validation error"
	case KindDownload:
		return "download error"
	case KindWrite:
		return "write error"
	default:
		return "error"
	}
}

// Error is a classified run failure.
type Error struct {
	Kind ErrorKind

	// Op names the step that failed, e.g. "fetch woff2" or a file name.
	Op string

	Err error
}

// NewError wraps err with kind and op.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err or anything it wraps is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
