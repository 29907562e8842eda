// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the controllers depend on.
// Production code injects Real(); tests inject Fake() and move time
// forward explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d
	// has elapsed. If d <= 0, the channel is ready immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls f once d has elapsed and returns a Timer that can
	// cancel the call. If d <= 0, f runs immediately: on a new
	// goroutine for the real clock, synchronously for the fake.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stop func() bool
}

// Stop cancels the pending call. Returns false when the call already
// ran or was already stopped. A nil Timer is safe to Stop.
func (timer *Timer) Stop() bool {
	if timer == nil || timer.stop == nil {
		return false
	}
	return timer.stop()
}
