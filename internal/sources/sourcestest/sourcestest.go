// Package sourcestest holds helpers for adapter tests.
package sourcestest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/transport"
)

// Client returns a session without retries or rate limiting.
func Client(t *testing.T) *transport.Client {
	t.Helper()

	cfg := transport.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.RequestsPerSecond = 0
	cfg.Timeout = 5 * time.Second

	f, err := transport.NewFactory(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("transport factory: %v", err)
	}
	return f.Session("test")
}

// Page is a canned response.
type Page struct {
	Status int
	Body   string
}

// Serve answers requests by matching the request URI (path plus query)
// against pages. Unknown URIs get 404.
func Serve(t *testing.T, pages map[string]Page) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if page.Status != 0 {
			w.WriteHeader(page.Status)
		}
		_, _ = w.Write([]byte(page.Body))
	}))
	t.Cleanup(srv.Close)

	return srv
}
