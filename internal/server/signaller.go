// Copyright (c) 2015 Western Digital Corporation or its affiliates.  All rights reserved.
// SPDX-License-Identifier: MIT

package server

import "time"

// Signaller wakes a worker goroutine. Signals don't queue up: any number of
// Signal calls before a Wait wake it once.
type Signaller chan struct{}

// NewSignaller creates a new Signaller.
func NewSignaller() Signaller {
	return make(Signaller, 1)
}

// Signal wakes the waiter, or the next Wait if nobody is waiting. It never
// blocks.
func (s Signaller) Signal() {
	select {
	case s <- struct{}{}:
	default:
	}
}

// Wait blocks until Signal is called or timeout passes. It reports whether it
// was signalled.
func (s Signaller) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s:
		return true
	case <-t.C:
		return false
	}
}

// TryWait consumes a pending signal without blocking.
func (s Signaller) TryWait() bool {
	select {
	case <-s:
		return true
	default:
		return false
	}
}
