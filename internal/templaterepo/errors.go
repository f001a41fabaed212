package templaterepo

import (
	"fmt"
)

// ErrorKind classifies why a resolution failed.
type ErrorKind int

const (
	InvalidReference ErrorKind = iota + 1
	MetadataFetchError
	TreeFetchError
	EmptyRepository
	MainFileFetchError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidReference:
		return "InvalidReference"
	case MetadataFetchError:
		return "MetadataFetchError"
	case TreeFetchError:
		return "TreeFetchError"
	case EmptyRepository:
		return "EmptyRepository"
	case MainFileFetchError:
		return "MainFileFetchError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Retryable reports whether the user may reasonably try the same reference again.
func (k ErrorKind) Retryable() bool {
	switch k {
	case MetadataFetchError, TreeFetchError, MainFileFetchError:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is checks against a ResolutionError of the same kind.
var (
	ErrInvalidReference = &ResolutionError{Kind: InvalidReference}
	ErrMetadataFetch    = &ResolutionError{Kind: MetadataFetchError}
	ErrTreeFetch        = &ResolutionError{Kind: TreeFetchError}
	ErrEmptyRepository  = &ResolutionError{Kind: EmptyRepository}
	ErrMainFileFetch    = &ResolutionError{Kind: MainFileFetchError}
)

// ResolutionError reports a failed resolution with the stage and URL that failed.
type ResolutionError struct {
	Kind    ErrorKind
	URL     string
	Message string
	Cause   error
}

func newResolutionError(kind ErrorKind, url, message string, cause error) *ResolutionError {
	return &ResolutionError{Kind: kind, URL: url, Message: message, Cause: cause}
}

func (e *ResolutionError) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.URL != "" {
		msg += " (" + e.URL + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is matches any ResolutionError of the same kind.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	return ok && t.Kind == e.Kind
}
