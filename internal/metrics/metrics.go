// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Signup outcomes.
const (
	SignupCreated   = "created"
	SignupDuplicate = "duplicate"
	SignupMismatch  = "mismatch"
	SignupInvalid   = "invalid"
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, tests, etc.
type Recorder interface {
	// Account flows
	IncSignup(outcome string)
	IncLogin(outcome string)
	IncLogout()

	// Abuse protection
	IncRateLimited(route string)
	IncCSRFRejected()

	// HTTP
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
