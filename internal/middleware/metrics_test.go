package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse/gatehouse/internal/metrics"
)

// routeSpy records the labels passed to ObserveHTTPRequest.
type routeSpy struct {
	metrics.NoopRecorder
	mu     sync.Mutex
	routes []string
	codes  []int
}

func (s *routeSpy) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, method+" "+route)
	s.codes = append(s.codes, status)
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	spy := &routeSpy{}

	r := chi.NewRouter()
	r.Use(Metrics(spy))
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	})
	r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/login", nil),
		httptest.NewRequest(http.MethodGet, "/static/app.css", nil),
		httptest.NewRequest(http.MethodGet, "/does-not-exist", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	wantRoutes := []string{"POST /login", "GET /static/*", "GET " + unmatchedRoute}
	wantCodes := []int{http.StatusSeeOther, http.StatusOK, http.StatusNotFound}
	if len(spy.routes) != len(wantRoutes) {
		t.Fatalf("recorded %d requests, want %d: %v", len(spy.routes), len(wantRoutes), spy.routes)
	}
	for i := range wantRoutes {
		if spy.routes[i] != wantRoutes[i] || spy.codes[i] != wantCodes[i] {
			t.Errorf("request %d: got %s %d, want %s %d", i, spy.routes[i], spy.codes[i], wantRoutes[i], wantCodes[i])
		}
	}
}
