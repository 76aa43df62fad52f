package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups        map[string]uint64
	Logins         map[string]uint64
	Logouts        uint64
	RateLimited    uint64
	CSRFRejected   uint64
	HTTPRequests   uint64
	HTTPDurationNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu             sync.Mutex
	signups        map[string]uint64
	logins         map[string]uint64
	logouts        uint64
	rateLimited    uint64
	csrfRejected   uint64
	httpRequests   uint64
	httpDurationNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		signups: make(map[string]uint64),
		logins:  make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	signups := make(map[string]uint64, len(m.signups))
	for k, v := range m.signups {
		signups[k] = v
	}
	logins := make(map[string]uint64, len(m.logins))
	for k, v := range m.logins {
		logins[k] = v
	}

	return Snapshot{
		Signups:        signups,
		Logins:         logins,
		Logouts:        m.logouts,
		RateLimited:    m.rateLimited,
		CSRFRejected:   m.csrfRejected,
		HTTPRequests:   m.httpRequests,
		HTTPDurationNs: m.httpDurationNs,
	}
}

// IncSignup increments the signup counter for an outcome.
func (m *InMemoryRecorder) IncSignup(outcome string) {
	m.mu.Lock()
	m.signups[outcome]++
	m.mu.Unlock()
}

// IncLogin increments the login counter for an outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	m.logins[outcome]++
	m.mu.Unlock()
}

// IncLogout increments the logout counter.
func (m *InMemoryRecorder) IncLogout() {
	m.mu.Lock()
	m.logouts++
	m.mu.Unlock()
}

// IncRateLimited increments the rate-limited counter.
func (m *InMemoryRecorder) IncRateLimited(route string) {
	m.mu.Lock()
	m.rateLimited++
	m.mu.Unlock()
}

// IncCSRFRejected increments the CSRF rejection counter.
func (m *InMemoryRecorder) IncCSRFRejected() {
	m.mu.Lock()
	m.csrfRejected++
	m.mu.Unlock()
}

// ObserveHTTPRequest records one HTTP request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.mu.Lock()
	m.httpRequests++
	m.httpDurationNs += duration.Nanoseconds()
	m.mu.Unlock()
}
