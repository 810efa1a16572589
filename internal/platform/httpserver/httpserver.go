// Package httpserver configures the registry's HTTP listener and shutdown.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Requests and responses are single small JSON objects, so the write
// timeout only needs to cover the 30s handler deadline plus the envelope.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 60 * time.Second
)

// New builds the HTTP server for the registry.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// Shutdown drains the server, waiting at most timeout for in-flight
// requests before forcing the listener closed.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
