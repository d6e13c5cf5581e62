// Copyright (c) 2026 DevisApp. All rights reserved.

// Package clock provides an injectable wall-clock source.
//
// All expiry math (token TTLs, invoice date prefixes) flows through a single
// [Clock] so that tests can pin time to a fixed instant instead of sleeping.
package clock

import "time"

// Clock is the minimal time source consumed by the token codec and the
// invoice numbering engine.
type Clock interface {
	Now() time.Time
}

// System is the production clock backed by [time.Now].
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time { return time.Now() }

// Fixed is a test clock pinned to a settable instant.
//
// # Concurrency
//
// Fixed is not safe for concurrent mutation; tests advance it from a single
// goroutine.
type Fixed struct {
	Instant time.Time
}

// NewFixed returns a [*Fixed] pinned to the given instant.
func NewFixed(t time.Time) *Fixed { return &Fixed{Instant: t} }

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time { return f.Instant }

// Advance moves the pinned instant forward by d.
func (f *Fixed) Advance(d time.Duration) { f.Instant = f.Instant.Add(d) }
