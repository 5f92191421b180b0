package utils

import (
	"sync"
	"time"
)

const (
	// LoginMaxAttempts failed attempts within LoginAttemptWindow block
	// further login attempts for that identity.
	LoginMaxAttempts   = 5
	LoginAttemptWindow = 300 * time.Second
)

// LoginLimiter tracks recent failed-authentication attempts per email in
// process memory. State is lost on restart and not shared across processes;
// running more than one instance loses limiting correctness, a known
// limitation of the single-process deployment model.
//
// The limiter is advisory: the login flow must call IsLimited explicitly
// before verifying credentials and translate a hit into a rate-limit
// failure, so callers cannot distinguish "wrong password" from "too many
// attempts" beyond the limiter's own response.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

// NewLoginLimiter builds a limiter. Construct one at process start and
// inject it; there is no package-level instance.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// RecordFailure appends a failed attempt timestamp for the given email.
func (l *LoginLimiter) RecordFailure(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[email] = append(l.attempts[email], l.now())
}

// IsLimited prunes attempts older than the window and reports whether the
// remaining count reaches the limit.
func (l *LoginLimiter) IsLimited(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	recorded, ok := l.attempts[email]
	if !ok {
		return false
	}

	cutoff := l.now().Add(-LoginAttemptWindow)
	recent := recorded[:0]
	for _, t := range recorded {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) == 0 {
		delete(l.attempts, email)
		return false
	}
	l.attempts[email] = recent

	return len(recent) >= LoginMaxAttempts
}

// Clear drops all recorded attempts for the email. Called after a
// successful login.
func (l *LoginLimiter) Clear(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, email)
}
