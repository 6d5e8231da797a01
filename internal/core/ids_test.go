// Copyright (c) 2015 Western Digital Corporation or its affiliates.  All rights reserved.
// SPDX-License-Identifier: MIT

package core

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestLegacyLibraryIDs(t *testing.T) {
	ref := LegacyLibraryRef{Author: "FrozenPlain", Name: "Wraith"}
	id := ref.Provisional()
	if id != "FrozenPlain - Wraith" {
		t.Fatalf("provisional id %q", id)
	}
	back, ok := id.Legacy()
	if !ok || back != ref {
		t.Fatalf("Legacy() = %+v, %v", back, ok)
	}
	if got := ref.ReverseDNS(); got != "com.frozenplain.wraith" {
		t.Errorf("ReverseDNS() = %q", got)
	}
	if got := MirageCompatibilityLibrary.ReverseDNS(); got != "com.frozenplain.mirage-compat" {
		t.Errorf("renamed library gave %q", got)
	}
	if got := (LegacyLibraryRef{Author: "Some One", Name: "Big  Pads (v2)"}).ReverseDNS(); got != "com.some-one.big-pads-v2" {
		t.Errorf("slug gave %q", got)
	}
}

func TestLibraryIDAuthor(t *testing.T) {
	cases := map[LibraryID]string{
		"com.frozenplain.wraith": "FrozenPlain",
		"org.someone.pads":       "someone",
		"Me - My Lib":            "Me",
		"weird":                  "weird",
	}
	for id, want := range cases {
		if got := id.Author(); got != want {
			t.Errorf("%q.Author() = %q, want %q", id, got, want)
		}
	}
	if _, ok := LibraryID("com.frozenplain.wraith").Legacy(); ok {
		t.Errorf("reverse-dns id parsed as legacy")
	}
}

func TestLibraryIDValidate(t *testing.T) {
	for _, bad := range []LibraryID{"", "a/b", "a\\b"} {
		if bad.Validate() != ErrInvalidID {
			t.Errorf("%q accepted", bad)
		}
	}
	if err := LibraryID("com.frozenplain.wraith").Validate(); err != nil {
		t.Errorf("valid id rejected: %s", err)
	}
}

func TestInstrumentString(t *testing.T) {
	if s := NoInstrument.String(); s != "none" {
		t.Errorf("got %q", s)
	}
	if s := Waveform(WaveformSine).String(); s != "Sine" {
		t.Errorf("got %q", s)
	}
	if s := Sampler("com.a.b", "Pad").String(); s != "com.a.b/Pad" {
		t.Errorf("got %q", s)
	}
}

func TestFileFormatForPath(t *testing.T) {
	cases := []struct {
		path   string
		format FileFormat
		ok     bool
	}{
		{"/a/b.floe-preset", FileFormatFloe, true},
		{"/a/b.mirage-preset", FileFormatMirage, true},
		{"/a/b.mirage", FileFormatMirage, true},
		{"/a/b.wav", 0, false},
		{"/a/floe-preset", 0, false},
	}
	for _, c := range cases {
		f, ok := FileFormatForPath(c.path)
		if ok != c.ok || (ok && f != c.format) {
			t.Errorf("%s: got %s, %v", c.path, f, ok)
		}
	}
}

func TestErrors(t *testing.T) {
	if NoError.Error() != nil {
		t.Errorf("NoError is an error")
	}
	wrapped := fmt.Errorf("reading x: %w", ErrCorruptData.Error())
	if !errors.Is(wrapped, ErrCorruptData.Error()) || !ErrCorruptData.Is(wrapped) {
		t.Errorf("kind lost through wrapping")
	}
	if FromError(wrapped) != ErrCorruptData {
		t.Errorf("FromError = %s", FromError(wrapped))
	}
	_, err := os.Open("/does/not/exist")
	if FromError(fmt.Errorf("open: %w", err)) != ErrFileNotFound {
		t.Errorf("missing file not classified")
	}
	if FromError(errors.New("boom")) != ErrIO {
		t.Errorf("unknown error not classified as io")
	}
	if FromError(nil) != NoError {
		t.Errorf("nil error not NoError")
	}
}
