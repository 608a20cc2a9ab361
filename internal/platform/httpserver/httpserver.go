package httpserver

import (
	"net/http"
	"time"
)

// New wraps the handler in an http.Server with explicit timeouts. Read and
// write allow for proof-image uploads on slow venue connections; the header
// timeout stays short to shed idle scanners.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
