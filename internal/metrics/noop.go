package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignup is a no-op.
func (n *NoopRecorder) IncSignup(outcome string) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(outcome string) {}

// IncLogout is a no-op.
func (n *NoopRecorder) IncLogout() {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited(route string) {}

// IncCSRFRejected is a no-op.
func (n *NoopRecorder) IncCSRFRejected() {}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}
