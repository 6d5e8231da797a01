// Copyright (c) 2015 Western Digital Corporation or its affiliates.  All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/westerndigitalcorporation/floe/internal/core"
)

var testOps = NewOpMetric("floe_server_test_ops", "op")

func TestOpMetric(t *testing.T) {
	op := testOps.Start("parse")
	if testOps.Pending("parse") != 1 {
		t.Errorf("pending %d", testOps.Pending("parse"))
	}
	op.End()

	op = testOps.Start("parse")
	op.EndWithError(fmt.Errorf("reading: %w", core.ErrCorruptData.Error()))

	testOps.Start("parse").EndWithError(nil)

	if n := testOps.Count("all", "parse"); n != 3 {
		t.Errorf("all: %d", n)
	}
	if n := testOps.Count("failed", "parse"); n != 1 {
		t.Errorf("failed: %d", n)
	}
	if n := testOps.Count(ResultLabel(core.ErrCorruptData), "parse"); n != 1 {
		t.Errorf("corrupt: %d", n)
	}
	if testOps.Pending("parse") != 0 {
		t.Errorf("pending %d", testOps.Pending("parse"))
	}
	s := testOps.String("parse")
	if !strings.HasPrefix(s, "Total count=2") || !strings.Contains(s, "1 failed") {
		t.Errorf("string %q", s)
	}
}

func TestResultLabel(t *testing.T) {
	if got := ResultLabel(core.ErrInvalidFileFormat); got != "invalid_file_format" {
		t.Errorf("label %q", got)
	}
}

func TestSignaller(t *testing.T) {
	s := NewSignaller()
	if s.TryWait() {
		t.Fatalf("signalled before Signal")
	}
	start := time.Now()
	if s.Wait(20 * time.Millisecond) {
		t.Fatalf("signalled before Signal")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Errorf("Wait returned early")
	}

	// Signals collapse.
	s.Signal()
	s.Signal()
	if !s.Wait(time.Second) {
		t.Fatalf("missed signal")
	}
	if s.TryWait() {
		t.Errorf("second signal was queued")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Signal()
	}()
	if !s.Wait(5 * time.Second) {
		t.Errorf("missed signal from another goroutine")
	}
}
