package domain

import (
	"errors"
	"strings"
)

// ErrEmptyBaseURL is returned when an endpoint is configured without a base URL.
var ErrEmptyBaseURL = errors.New("endpoint base url required")

// ServiceEndpoint identifies one backend service. It is immutable once built.
type ServiceEndpoint struct {
	name    string
	baseURL string
}

// NewServiceEndpoint validates and normalizes a backend location.
func NewServiceEndpoint(name, baseURL string) (ServiceEndpoint, error) {
	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return ServiceEndpoint{}, ErrEmptyBaseURL
	}
	return ServiceEndpoint{name: name, baseURL: base}, nil
}

// Name is the logical service name used in logs and metrics.
func (e ServiceEndpoint) Name() string { return e.name }

// BaseURL has no trailing slash.
func (e ServiceEndpoint) BaseURL() string { return e.baseURL }

// URL joins path onto the base URL.
func (e ServiceEndpoint) URL(path string) string {
	return e.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// IsZero reports whether the endpoint was never configured.
func (e ServiceEndpoint) IsZero() bool { return e.baseURL == "" }
