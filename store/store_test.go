package store

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// newOKServer starts a test server answering every request with an empty
// JSON object.
func newOKServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	return server
}
