// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package arena

import (
	"strings"
	"testing"
)

func TestStrings(t *testing.T) {
	a := New(64)
	src := []byte("Ghost Choir")
	s := a.String(string(src))
	src[0] = 'X'
	if s != "Ghost Choir" {
		t.Errorf("arena string aliases its source: %q", s)
	}
	if a.String("") != "" || a.Used() != len(s) {
		t.Errorf("used %d", a.Used())
	}

	tags := a.Strings([]string{"pad", "", "ambient"})
	if strings.Join(tags, ",") != "pad,,ambient" {
		t.Errorf("tags %q", tags)
	}
	if a.Strings(nil) != nil {
		t.Errorf("nil slice not preserved")
	}
}

func TestChunks(t *testing.T) {
	a := New(64)
	for i := 0; i < 10; i++ {
		a.String("0123456789")
	}
	// 6 strings of 10 bytes fit a 64 byte chunk.
	if a.Chunks() != 2 || a.Used() != 100 || a.Reserved() != 128 {
		t.Errorf("chunks %d used %d reserved %d", a.Chunks(), a.Used(), a.Reserved())
	}

	big := strings.Repeat("x", 40)
	if got := a.String(big); got != big {
		t.Errorf("big string %q", got)
	}
	if a.Chunks() != 3 || a.Reserved() != 168 {
		t.Errorf("big string: chunks %d reserved %d", a.Chunks(), a.Reserved())
	}
}

func TestBytesDoNotOverlap(t *testing.T) {
	a := New(0)
	x := a.Bytes(8)
	y := a.Bytes(8)
	x = append(x, 1)
	for _, b := range y {
		if b != 0 {
			t.Fatalf("append to one block overwrote the next")
		}
	}
	if a.Bytes(0) != nil {
		t.Errorf("zero length")
	}
}

func TestReset(t *testing.T) {
	a := New(0)
	s := a.String("kept")
	a.Reset()
	if a.Used() != 0 || a.Chunks() != 0 || a.Reserved() != 0 {
		t.Errorf("not reset")
	}
	a.String("next")
	if s != "kept" {
		t.Errorf("string changed after reset: %q", s)
	}
}
