package httpclient

import "time"

const (
	defaultHTTPTimeout = 3 * time.Second
	// errorBodyLimit caps how much of a non-2xx body ends up in an error message.
	errorBodyLimit = 512
	// maxBodyBytes caps decoded response bodies.
	maxBodyBytes = 1 << 20
	statsPath    = "stats"
)
