package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeAPI is an in-process stand-in for the storefront REST API. Routes are
// registered per test; every request is counted by method and path.
type FakeAPI struct {
	Server *httptest.Server
	router chi.Router

	mu    sync.Mutex
	calls map[string]int
}

func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		router: chi.NewRouter(),
		calls:  make(map[string]int),
	}
	f.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.calls[r.Method+" "+r.URL.Path]++
			f.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})

	f.Server = httptest.NewServer(f.router)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// Handle answers method+pattern with a fixed status and JSON body.
func (f *FakeAPI) Handle(method, pattern string, status int, body string) {
	f.HandleFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (f *FakeAPI) HandleFunc(method, pattern string, h http.HandlerFunc) {
	f.router.MethodFunc(method, pattern, h)
}

// Calls returns how many requests hit the concrete method and path.
func (f *FakeAPI) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

func (f *FakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}
