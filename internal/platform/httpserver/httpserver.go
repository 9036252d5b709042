package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults suited to a short-request
// mock-authority workload. Request deadlines belong to this layer; the
// kyc core carries no timeout primitive of its own.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
