package session

import (
	"context"
	"sync"
	"time"
)

// warnThreshold is the actual remaining time at or below which the warning
// callback fires. The callback receives floored whole minutes for display.
const warnThreshold = 5 * time.Minute

// Timer periodically evaluates the stored session against its timeout.
//
// Behavior contract:
//   - Start runs one immediate check, then one check per interval.
//   - Remaining time is timeout minus elapsed since LoginAt, reported in
//     whole minutes (floored).
//   - The warning callback fires at most once per session once remaining
//     time drops to the threshold; Refresh re-arms it.
//   - On expiry the store is cleared synchronously before the expiry
//     callback runs, and the callback runs at most once per session.
//   - A record without LoginAt but with a timeout gets LoginAt initialized
//     to the current time instead of expiring.
//   - A record without a timeout is never expired by the timer.
type Timer struct {
	store    Store
	clock    Clock
	interval time.Duration
	onWarn   func(minutesLeft int)
	onExpire func()

	mu          sync.Mutex
	warned      bool
	expired     bool
	lastLoginAt time.Time
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewTimer(store Store, clock Clock, interval time.Duration, onWarn func(int), onExpire func()) *Timer {
	return &Timer{
		store:    store,
		clock:    clock,
		interval: interval,
		onWarn:   onWarn,
		onExpire: onExpire,
	}
}

// Start begins periodic checks until ctx is cancelled or Stop is called.
// The first check happens before Start returns.
func (t *Timer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	t.cancel = cancel
	t.done = make(chan struct{})
	done := t.done
	t.mu.Unlock()

	t.Check()

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Check()
			}
		}
	}()
}

// Stop halts periodic checks and waits for the timer goroutine to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Check runs a single evaluation of the stored session.
func (t *Timer) Check() {
	rec, err := t.store.Read()
	if err != nil || rec == nil {
		return
	}
	if rec.TimeoutMinutes <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// A new login re-arms both callbacks.
	if !rec.LoginAt.Equal(t.lastLoginAt) {
		t.warned = false
		t.expired = false
		t.lastLoginAt = rec.LoginAt
	}

	now := t.clock.Now()

	if rec.LoginAt.IsZero() {
		rec.LoginAt = now
		t.lastLoginAt = now
		_ = t.store.Save(rec)
		return
	}

	remaining := time.Duration(rec.TimeoutMinutes)*time.Minute - now.Sub(rec.LoginAt)
	if remaining <= 0 {
		if t.expired {
			return
		}
		t.expired = true
		_ = t.store.Clear()
		if t.onExpire != nil {
			t.onExpire()
		}
		return
	}

	if remaining <= warnThreshold && !t.warned {
		t.warned = true
		if t.onWarn != nil {
			t.onWarn(int(remaining / time.Minute))
		}
	}
}

// Refresh extends the session from now and re-arms the warning. It is a
// no-op when no session is stored.
func (t *Timer) Refresh() error {
	rec, err := t.store.Read()
	if err != nil || rec == nil {
		return err
	}

	t.mu.Lock()
	now := t.clock.Now()
	rec.LoginAt = now
	t.lastLoginAt = now
	t.warned = false
	t.expired = false
	t.mu.Unlock()

	return t.store.Save(rec)
}

// Remaining reports the floored whole minutes left and whether a timed
// session exists.
func (t *Timer) Remaining() (int, bool) {
	rec, err := t.store.Read()
	if err != nil || rec == nil || rec.TimeoutMinutes <= 0 || rec.LoginAt.IsZero() {
		return 0, false
	}
	remaining := time.Duration(rec.TimeoutMinutes)*time.Minute - t.clock.Now().Sub(rec.LoginAt)
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining / time.Minute), true
}
