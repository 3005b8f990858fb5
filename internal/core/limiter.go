package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyClassifications is returned when every classification slot is
// busy for longer than the configured wait.
var ErrTooManyClassifications = errors.New("too many classifications in progress, please try again later")

const (
	// DefaultMaxConcurrentClassifications bounds remote classify calls
	// across all sessions.
	DefaultMaxConcurrentClassifications = 4
	// DefaultMaxWaitTime is how long a classify request queues for a slot.
	DefaultMaxWaitTime = 10 * time.Second
)

// ClassifyLimiter bounds how many sessions talk to the classification
// service at once. Shutdown uses WaitForDrain to let running requests
// finish.
type ClassifyLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
	idle   chan struct{} // closed whenever active is zero
}

// NewClassifyLimiter returns a limiter with maxConcurrent slots. Callers
// that wait longer than maxWait for a slot get ErrTooManyClassifications.
func NewClassifyLimiter(maxConcurrent int, maxWait time.Duration) *ClassifyLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentClassifications
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	idle := make(chan struct{})
	close(idle)
	return &ClassifyLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire takes a slot. A successful Acquire must be paired with Release.
func (l *ClassifyLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyClassifications
	}

	l.mu.Lock()
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++
	l.mu.Unlock()
	return nil
}

// Release frees a slot taken by Acquire.
func (l *ClassifyLimiter) Release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	l.mu.Unlock()
	<-l.slots
}

// WaitForDrain blocks until no classification holds a slot or ctx is done.
func (l *ClassifyLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterStatus is reported by the health endpoint.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns current slot usage.
func (l *ClassifyLimiter) Status() LimiterStatus {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}
