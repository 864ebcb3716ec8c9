package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow admits at most limit calls in any trailing window. Callers that
// find the window full block until the oldest admitted call ages out.
type SlidingWindow struct {
	waitMu sync.Mutex
	mu     sync.Mutex

	limit  int
	window time.Duration
	stamps []time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSlidingWindow returns a limiter. A non-positive limit or window disables
// limiting.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func (l *SlidingWindow) Enabled() bool {
	return l != nil && l.limit > 0 && l.window > 0
}

// Wait blocks until a slot is free or ctx ends. Concurrent callers are
// admitted one at a time.
func (l *SlidingWindow) Wait(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}
	l.waitMu.Lock()
	defer l.waitMu.Unlock()

	for {
		delay, ok := l.reserve()
		if ok {
			return nil
		}
		if err := l.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (l *SlidingWindow) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)
	if len(l.stamps) < l.limit {
		l.stamps = append(l.stamps, now)
		return 0, true
	}
	return l.stamps[0].Add(l.window).Sub(now), false
}

func (l *SlidingWindow) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	drop := 0
	for drop < len(l.stamps) && !l.stamps[drop].After(cutoff) {
		drop++
	}
	if drop > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[drop:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
