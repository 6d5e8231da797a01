// Copyright (c) 2015 Western Digital Corporation or its affiliates.  All rights reserved.
// SPDX-License-Identifier: MIT

// Package tokenbucket throttles work to a steady rate. The preset server uses
// it to cap how many bytes per second a scan reads from disk.
package tokenbucket

import (
	"context"
	"sync"
	"time"
)

// TokenBucket implements the basic token bucket rate limiting algorithm.
// It is safe for use by multiple goroutines at once. A bucket with a rate of
// zero never makes anyone wait.
type TokenBucket struct {
	lock     sync.Mutex
	rate     float64
	capacity float64
	current  float64
	last     time.Time
}

// New returns a new token bucket that fills at the given rate
// (tokens per second) and has the given capacity (tokens).
func New(rate, capacity float64) *TokenBucket {
	return &TokenBucket{
		rate:     rate,
		capacity: capacity,
		current:  capacity,
		last:     time.Now(),
	}
}

// Unlimited reports whether the bucket is switched off.
func (tb *TokenBucket) Unlimited() bool {
	tb.lock.Lock()
	defer tb.lock.Unlock()
	return tb.rate <= 0
}

// Wait consumes n tokens and sleeps until the balance is non-negative again,
// or until ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context, n float64) error {
	d := tb.TakeAndUpdate(n, time.Now())
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TakeAndUpdate updates the state of the bucket to a new time, consumes n
// tokens, leaving a negative balance if necessary, and returns how long the
// caller should sleep until there's a non-negative balance again (may be
// negative if there was enough capacity).
func (tb *TokenBucket) TakeAndUpdate(n float64, now time.Time) (sleepTime time.Duration) {
	tb.lock.Lock()
	defer tb.lock.Unlock()

	if tb.rate <= 0 {
		tb.last = now
		return 0
	}

	// Add capacity based on elapsed time, capped at capacity.
	elapsed := now.Sub(tb.last)
	tb.last = now
	tb.current += tb.rate * elapsed.Seconds()
	if tb.current > tb.capacity {
		tb.current = tb.capacity
	}
	tb.current -= n

	return time.Duration(-tb.current / tb.rate * float64(time.Second))
}

// SetRate changes the rate and capacity of this TokenBucket after it's
// created. A rate of zero switches throttling off.
func (tb *TokenBucket) SetRate(rate, capacity float64) {
	tb.lock.Lock()
	tb.rate = rate
	tb.capacity = capacity
	if tb.current > capacity {
		tb.current = capacity
	}
	tb.lock.Unlock()
}
