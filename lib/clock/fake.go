// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock stopped at initial. Time moves only when
// Advance is called.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests. Pending After and
// AfterFunc waiters fire during Advance in deadline order, ties broken
// by registration order. AfterFunc callbacks run synchronously on the
// goroutine calling Advance, with the clock's lock released, so a
// callback may schedule further timers.
//
// FakeClock is safe for concurrent use.
type FakeClock struct {
	mu       sync.Mutex
	current  time.Time
	pending  []*fakeTimer
	sequence uint64
	changed  *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	sequence uint64

	// Exactly one of channel and callback is set.
	channel  chan time.Time
	callback func()

	done bool
}

// Now returns the fake time.
func (clock *FakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.current
}

// After returns a channel that receives once the clock has advanced by
// d. If d <= 0 the channel is ready before After returns.
func (clock *FakeClock) After(d time.Duration) <-chan time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- clock.current
		return channel
	}
	clock.registerLocked(&fakeTimer{deadline: clock.current.Add(d), channel: channel})
	return channel
}

// AfterFunc schedules f. If d <= 0, f runs before AfterFunc returns and
// the returned Timer's Stop reports false.
func (clock *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stop: func() bool { return false }}
	}

	clock.mu.Lock()
	waiter := &fakeTimer{deadline: clock.current.Add(d), callback: f}
	clock.registerLocked(waiter)
	clock.mu.Unlock()

	return &Timer{stop: func() bool {
		clock.mu.Lock()
		defer clock.mu.Unlock()
		if waiter.done {
			return false
		}
		waiter.done = true
		clock.changed.Broadcast()
		return true
	}}
}

func (clock *FakeClock) registerLocked(waiter *fakeTimer) {
	clock.sequence++
	waiter.sequence = clock.sequence
	clock.pending = append(clock.pending, waiter)
	clock.changed.Broadcast()
}

// Advance moves the clock forward by d and fires every waiter whose
// deadline is at or before the new time. Waiters registered by a
// callback during Advance also fire if they fall inside the window.
func (clock *FakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	clock.current = clock.current.Add(d)
	target := clock.current
	clock.mu.Unlock()

	for {
		waiter := clock.nextDue(target)
		if waiter == nil {
			return
		}
		if waiter.callback != nil {
			waiter.callback()
			continue
		}
		select {
		case waiter.channel <- target:
		default:
		}
	}
}

// nextDue removes and returns the earliest due waiter, or nil.
func (clock *FakeClock) nextDue(target time.Time) *fakeTimer {
	clock.mu.Lock()
	defer clock.mu.Unlock()

	live := clock.pending[:0]
	for _, waiter := range clock.pending {
		if !waiter.done {
			live = append(live, waiter)
		}
	}
	clock.pending = live

	sort.SliceStable(clock.pending, func(i, j int) bool {
		left, right := clock.pending[i], clock.pending[j]
		if !left.deadline.Equal(right.deadline) {
			return left.deadline.Before(right.deadline)
		}
		return left.sequence < right.sequence
	})

	if len(clock.pending) == 0 || clock.pending[0].deadline.After(target) {
		return nil
	}
	waiter := clock.pending[0]
	waiter.done = true
	clock.pending = clock.pending[1:]
	clock.changed.Broadcast()
	return waiter
}

// Pending returns the number of waiters that have neither fired nor
// been stopped.
func (clock *FakeClock) Pending() int {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.pendingLocked()
}

func (clock *FakeClock) pendingLocked() int {
	count := 0
	for _, waiter := range clock.pending {
		if !waiter.done {
			count++
		}
	}
	return count
}

// WaitForTimers blocks until at least n waiters are pending. Use it
// when another goroutine registers the timer, to avoid racing Advance
// against the registration.
func (clock *FakeClock) WaitForTimers(n int) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	for clock.pendingLocked() < n {
		clock.changed.Wait()
	}
}
