package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for this API: requests
// are small JSON bodies, and the write timeout leaves room for the
// router's own 30s handler timeout.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
