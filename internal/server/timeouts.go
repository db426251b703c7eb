package server

import "time"

const (
	readTimeout       = 5 * time.Second
	readHeaderTimeout = 2 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// shutdownTimeout bounds the controller drain and both server shutdowns; tests shorten it.
var shutdownTimeout = 10 * time.Second
