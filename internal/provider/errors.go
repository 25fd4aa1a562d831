package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies backend failures for retry decisions.
type ErrorKind int

const (
	// KindUnavailable covers connection failures and 5xx responses.
	KindUnavailable ErrorKind = iota
	// KindTimeout covers per-call deadline expiry.
	KindTimeout
	// KindBadRequest covers 4xx responses; retrying cannot help.
	KindBadRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "backend unavailable"
	case KindTimeout:
		return "backend timeout"
	case KindBadRequest:
		return "bad request"
	}
	return "unknown"
}

// BackendError wraps a backend failure with its retry classification.
type BackendError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Retryable reports whether the error is a transient backend failure
// worth another attempt.
func Retryable(err error) bool {
	var be *BackendError
	if !errors.As(err, &be) {
		return false
	}
	return be.Kind == KindUnavailable || be.Kind == KindTimeout
}
