package learning

import (
	"context"
	"sync"
	"time"

	"proof-of-learning-go/internal/model"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	timers []func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 12, 10, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers = append(c.timers, f)
}

// fire runs every pending timer.
func (c *fakeClock) fire() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, f := range timers {
		f()
	}
}

type fakeLedger struct {
	mu        sync.Mutex
	connected bool
	address   string
	objectID  string
	confirm   bool
	err       string
	started   []string
	completed []uint8
	minted    int
	mint      *model.MintResult
}

func (l *fakeLedger) Connected() bool { return l.connected }
func (l *fakeLedger) Address() string { return l.address }
func (l *fakeLedger) Err() string     { return l.err }

func (l *fakeLedger) StartLearning(_ context.Context, courseID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, courseID)
	return l.objectID
}

func (l *fakeLedger) CompleteModule(_ context.Context, _ string, moduleID uint8) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed = append(l.completed, moduleID)
	return l.confirm
}

func (l *fakeLedger) MintCertificate(_ context.Context, _, _, _ string) *model.MintResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minted++
	return l.mint
}
