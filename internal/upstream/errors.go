package upstream

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a fetch did not produce data.
type FailureKind string

const (
	// FailureTransport covers unreachable hosts, timeouts and cancelled requests.
	FailureTransport FailureKind = "transport"
	// FailureHTTPStatus covers any non-2xx response.
	FailureHTTPStatus FailureKind = "http_status"
	// FailureParse covers bodies that are not the expected JSON.
	FailureParse FailureKind = "parse"
)

// FetchError is the single failure type returned by upstream clients.
type FetchError struct {
	Upstream   string
	URL        string
	Kind       FailureKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind) + " failure"
	}
	prefix := e.Upstream
	if prefix == "" {
		prefix = "upstream"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status=%d)", prefix, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FailureKind exposes the classification to metrics without an import cycle.
func (e *FetchError) FailureKind() string { return string(e.Kind) }

// AsFetchError attempts to unwrap an error into a FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the failure kind of err, treating unclassified errors as transport failures.
func KindOf(err error) FailureKind {
	if fe, ok := AsFetchError(err); ok {
		return fe.Kind
	}
	return FailureTransport
}
