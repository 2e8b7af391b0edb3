package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project. The write
// timeout leaves headroom over the search timeout so slow searches surface as
// handler errors, not dropped connections.
func New(addr string, handler http.Handler, searchTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      searchTimeout + 5*time.Second,
	}
}
