// Copyright (c) 2016 Western Digital Corporation or its affiliates.  All rights reserved.
// SPDX-License-Identifier: MIT

package tokenbucket

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestBasics(t *testing.T) {
	tb := New(100, 500)
	start := tb.last

	steps := []struct {
		at       time.Duration
		take     float64
		min, max time.Duration
	}{
		// Plenty of capacity.
		{1000 * time.Millisecond, 100, -time.Hour, 0},
		{2000 * time.Millisecond, 100, -time.Hour, 0},
		{3000 * time.Millisecond, 500, -time.Hour, 0},
		// The bucket is empty, so 100 more takes a second.
		{3000 * time.Millisecond, 100, 800 * time.Millisecond, 1000 * time.Millisecond},
		{4000 * time.Millisecond, 10, time.Nanosecond, time.Hour},
		{5000 * time.Millisecond, 100, 50 * time.Millisecond, 150 * time.Millisecond},
		// A full bucket covers its capacity but no more.
		{100 * time.Second, 500, -time.Hour, 0},
		{200 * time.Second, 501, 0, time.Hour},
	}
	for i, s := range steps {
		d := tb.TakeAndUpdate(s.take, start.Add(s.at))
		if d < s.min || d > s.max {
			t.Errorf("step %d: sleep %s not in [%s, %s]", i, d, s.min, s.max)
		}
	}
}

// A reader taking unit tokens at a time should take (max-cap)/rate seconds
// to read max tokens.
func TestSteadyRate(t *testing.T) {
	for _, c := range []struct{ rate, cap, unit, max float64 }{
		{100, 0, 1, 1000},
		{100, 0, 100, 1000},
		{100, 200, 10, 1000},
		{100, 2000, 10, 1000},
		{4 << 20, 1 << 20, 64 << 10, 32 << 20},
	} {
		expected := math.Max(c.max-c.cap, 0) / c.rate

		tb := New(c.rate, c.cap)
		start := tb.last
		now := start
		for i := 0.0; i < c.max; i += c.unit {
			if sleep := tb.TakeAndUpdate(c.unit, now); sleep > 0 {
				now = now.Add(sleep)
			}
		}

		elapsed := now.Sub(start).Seconds()
		if (elapsed > 0.001 || expected > 0.001) && math.Abs((elapsed-expected)/expected) > 0.01 {
			t.Errorf("%+v: took %v, want %v", c, elapsed, expected)
		}
	}
}

func TestUnlimited(t *testing.T) {
	tb := New(0, 0)
	if !tb.Unlimited() {
		t.Fatalf("zero rate is limited")
	}
	for i := 0; i < 10; i++ {
		if d := tb.TakeAndUpdate(1<<30, time.Now()); d != 0 {
			t.Fatalf("unlimited bucket asked to sleep %s", d)
		}
	}
	if err := tb.Wait(context.Background(), 1<<30); err != nil {
		t.Error(err)
	}

	tb.SetRate(10, 10)
	if tb.Unlimited() {
		t.Errorf("still unlimited after SetRate")
	}
}

func TestWaitCancelled(t *testing.T) {
	tb := New(1, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := tb.Wait(ctx, 3600); err != context.DeadlineExceeded {
		t.Errorf("err %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Errorf("Wait ignored the context")
	}
}
