// Copyright (c) 2016 Western Digital Corporation or its affiliates.  All rights reserved.
// SPDX-License-Identifier: MIT

package core

import (
	"errors"
	"fmt"
	"strings"
)

/*

Sample libraries have been identified in two ways over time:

 - Before reverse-DNS ids, a library was an {author, name} pair. Anything
   decoded from that era carries a provisional LibraryID of the form

       "<author> - <name>"

 - Current presets carry a reverse-DNS string such as

       "com.frozenplain.wraith"

Reverse-DNS ids never contain spaces, so the provisional form can always be
told apart and is rewritten by the version adapter.

*/

// ErrInvalidID is the error returned when a string representation of an ID is invalid.
var ErrInvalidID = errors.New("invalid id format")

// LibraryID identifies a sample library.
type LibraryID string

// legacySeparator joins author and name in a provisional LibraryID.
const legacySeparator = " - "

// LegacyLibraryRef is the {author, name} pair a library was known by before
// reverse-DNS ids.
type LegacyLibraryRef struct {
	Author string
	Name   string
}

// MirageCompatibilityLibrary holds the impulse responses that shipped with
// Mirage.
var MirageCompatibilityLibrary = LegacyLibraryRef{Author: "FrozenPlain", Name: "Mirage Compatibility"}

// renamedLibraries lists libraries whose published reverse-DNS id is not the
// mechanical slug of their legacy pair.
var renamedLibraries = map[LegacyLibraryRef]LibraryID{
	{Author: "FrozenPlain", Name: "Mirage Compatibility"}: "com.frozenplain.mirage-compat",
	{Author: "FrozenPlain", Name: "Arctic Strings"}:       "com.frozenplain.arctic-strings",
	{Author: "FrozenPlain", Name: "Music Box Suite Free"}: "com.frozenplain.music-box-suite",
}

// knownAuthors maps the organisation label of a reverse-DNS id to a display
// name.
var knownAuthors = map[string]string{
	"frozenplain": "FrozenPlain",
}

// Provisional returns the provisional LibraryID used until the version adapter
// rewrites it.
func (r LegacyLibraryRef) Provisional() LibraryID {
	return LibraryID(r.Author + legacySeparator + r.Name)
}

// ReverseDNS returns the current id of the library.
func (r LegacyLibraryRef) ReverseDNS() LibraryID {
	if id, ok := renamedLibraries[r]; ok {
		return id
	}
	return LibraryID("com." + slug(r.Author) + "." + slug(r.Name))
}

// Legacy splits a provisional LibraryID back into its pair. ok is false for
// reverse-DNS ids.
func (id LibraryID) Legacy() (ref LegacyLibraryRef, ok bool) {
	s := string(id)
	i := strings.Index(s, legacySeparator)
	if i <= 0 {
		return ref, false
	}
	return LegacyLibraryRef{Author: s[:i], Name: s[i+len(legacySeparator):]}, true
}

// Author returns a display name for whoever published the library.
func (id LibraryID) Author() string {
	if ref, ok := id.Legacy(); ok {
		return ref.Author
	}
	parts := strings.Split(string(id), ".")
	if len(parts) < 3 {
		return string(id)
	}
	if name, ok := knownAuthors[parts[1]]; ok {
		return name
	}
	return parts[1]
}

// Validate checks that the id is non-empty and has no path separators.
func (id LibraryID) Validate() error {
	if id == "" || strings.ContainsAny(string(id), "/\\\x00") {
		return ErrInvalidID
	}
	return nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// WaveformType is one of the built-in oscillators.
type WaveformType uint8

const (
	WaveformSine WaveformType = iota
	WaveformWhiteNoiseMono
	WaveformWhiteNoiseStereo
	NumWaveformTypes
)

func (w WaveformType) String() string {
	switch w {
	case WaveformSine:
		return "Sine"
	case WaveformWhiteNoiseMono:
		return "White Noise Mono"
	case WaveformWhiteNoiseStereo:
		return "White Noise Stereo"
	}
	return fmt.Sprintf("WaveformType(%d)", uint8(w))
}

// InstrumentType discriminates InstrumentID.
type InstrumentType uint8

const (
	InstrumentNone InstrumentType = iota
	InstrumentWaveformSynth
	InstrumentSampler
	NumInstrumentTypes
)

// SamplerInstrumentID names one instrument inside a sample library.
type SamplerInstrumentID struct {
	Library LibraryID
	Name    string
}

// InstrumentID is what a layer plays. Only the field matching Type is
// meaningful; the others are zero.
type InstrumentID struct {
	Type     InstrumentType
	Waveform WaveformType
	Sampler  SamplerInstrumentID
}

// NoInstrument is the empty layer.
var NoInstrument = InstrumentID{}

// Waveform returns an InstrumentID for a built-in oscillator.
func Waveform(w WaveformType) InstrumentID {
	return InstrumentID{Type: InstrumentWaveformSynth, Waveform: w}
}

// Sampler returns an InstrumentID for a sample library instrument.
func Sampler(lib LibraryID, name string) InstrumentID {
	return InstrumentID{Type: InstrumentSampler, Sampler: SamplerInstrumentID{Library: lib, Name: name}}
}

func (i InstrumentID) String() string {
	switch i.Type {
	case InstrumentNone:
		return "none"
	case InstrumentWaveformSynth:
		return i.Waveform.String()
	case InstrumentSampler:
		return string(i.Sampler.Library) + "/" + i.Sampler.Name
	}
	return fmt.Sprintf("InstrumentType(%d)", uint8(i.Type))
}

// IRID names an impulse response inside a sample library.
type IRID struct {
	Library LibraryID
	Name    string
}

func (i IRID) String() string {
	return string(i.Library) + "/" + i.Name
}
