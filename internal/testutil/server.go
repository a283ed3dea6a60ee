package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewIPv4TestServer starts a test server bound to IPv4 loopback to avoid IPv6 listener issues.
func NewIPv4TestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	t.Cleanup(server.Close)
	return server
}

// Site is a fake website serving canned HTML per path and counting hits.
type Site struct {
	*httptest.Server

	mu     sync.Mutex
	mux    *http.ServeMux
	hits   map[string]int
	params map[string]string
}

// NewSite starts an empty fake site.
func NewSite(t *testing.T) *Site {
	t.Helper()

	s := &Site{
		mux:    http.NewServeMux(),
		hits:   make(map[string]int),
		params: make(map[string]string),
	}
	s.Server = NewIPv4TestServer(t, http.HandlerFunc(s.serve))
	return s
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.params[r.URL.Path] = r.URL.RawQuery
	s.mu.Unlock()

	s.mux.ServeHTTP(w, r)
}

// HTML registers a page served with status 200 at path.
func (s *Site) HTML(path, body string) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	})
}

// Redirect registers a temporary redirect from path to target.
func (s *Site) Redirect(path, target string) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	})
}

// Status registers a bare status response at path.
func (s *Site) Status(path string, code int) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	})
}

// Hits returns how many requests reached path.
func (s *Site) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// LastQuery returns the raw query string of the last request to path.
func (s *Site) LastQuery(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params[path]
}
