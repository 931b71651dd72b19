// Package clock defines the ledger clock collaborator.
//
// The gateway reads "now" from an injected Clock so that billing-due
// calculations follow the ledger's notion of time, not the host's. The
// ledger guarantees the value is monotonic across calls; System delegates to
// the wall clock, Fake gives tests full control.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current ledger timestamp.
type Clock interface {
	Now() time.Time
}

// Func is an adapter to use a plain function as a Clock.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() time.Time { return f() }

// System returns a Clock backed by time.Now in UTC.
func System() Clock {
	return Func(func() time.Time { return time.Now().UTC() })
}

// Fake is a manually controlled Clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake pinned to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now implements Clock.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d and returns the new time.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

// Set pins the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}
