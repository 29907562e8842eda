// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so that
// debounce windows and timestamps can be tested without sleeping.
//
// Controllers take a Clock in their config:
//
//	controller := ticketlist.New(ticketlist.Config{
//	    Source: client,
//	    Clock:  clock.Real(),
//	})
//
// Tests substitute a fake and move time explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	controller.SetSearch("abc")
//	fake.Advance(500 * time.Millisecond) // the debounced fetch runs here
//
// FakeClock.WaitForTimers covers the case where a different goroutine
// registers the timer.
package clock
