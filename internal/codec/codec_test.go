// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package codec

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/params"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

// fullSnapshot sets every optional part of a snapshot.
func fullSnapshot() *state.Snapshot {
	s := state.Default()
	state.Randomise(s, rand.New(rand.NewSource(7)))
	s.Instruments[0] = core.Sampler("com.frozenplain.wraith", "Ghost Choir")
	s.Instruments[1] = core.Waveform(core.WaveformWhiteNoiseStereo)
	s.IR = &core.IRID{Library: "com.frozenplain.mirage-compat", Name: "Cathedral"}
	s.VelocityCurves[0] = []state.CurvePoint{{X: 0, Y: 0.2, Curve: 0.5}, {X: 0.6, Y: 1, Curve: -0.3}}
	s.VelocityCurves[2] = state.FlatCurve(1)
	s.Macros[1].Name = "Air"
	s.Macros[1].Destinations = []state.MacroDestination{
		{Param: params.ReverbMix, Value: 0.5},
		{Param: params.LayerIndex(2, params.LayerFilterCutoff), Value: -1},
	}
	s.Metadata = state.Metadata{Author: "Sam", Description: "A wide pad.", Tags: []string{"pad", "ambient"}}
	s.InstanceID = "x7f2"
	return s
}

func TestRoundTrip(t *testing.T) {
	for name, s := range map[string]*state.Snapshot{"default": state.Default(), "full": fullSnapshot()} {
		data, err := Encode(s)
		if err != nil {
			t.Fatalf("%s: encode: %s", name, err)
		}
		got, h, err := Decode(data, Options{})
		if err != nil {
			t.Fatalf("%s: decode: %s", name, err)
		}
		if h.Version != state.VersionLatest || h.Writer != WriterVersion {
			t.Errorf("%s: header %+v", name, h)
		}
		if !got.Equal(s) {
			t.Errorf("%s: round trip changed the snapshot", name)
		}
		again, err := Encode(got)
		if err != nil || !bytes.Equal(again, data) {
			t.Errorf("%s: re-encoding is not byte identical", name)
		}
	}
}

func TestAbbreviated(t *testing.T) {
	s := fullSnapshot()
	data, _ := Encode(s)
	got, _, err := Decode(data, Options{Abbreviated: true})
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if got.Params != params.Defaults() {
		t.Errorf("abbreviated decode kept parameter values")
	}
	if got.VelocityCurves[0] != nil {
		t.Errorf("abbreviated decode kept curves")
	}
	if got.Instruments != s.Instruments || got.Metadata.Author != "Sam" || len(got.Metadata.Tags) != 2 {
		t.Errorf("abbreviated decode lost metadata")
	}
}

func TestBadHeader(t *testing.T) {
	data, _ := Encode(state.Default())

	if _, _, err := Decode([]byte("NOTAPRESETATALL"), Options{}); !core.ErrInvalidFileFormat.Is(err) {
		t.Errorf("bad magic: %v", err)
	}
	if _, _, err := Decode(data[:4], Options{}); !core.ErrInvalidFileFormat.Is(err) {
		t.Errorf("short magic: %v", err)
	}

	future := append([]byte(nil), data...)
	binary.LittleEndian.PutUint16(future[len(Magic):], uint16(state.VersionLatest+1))
	if _, _, err := Decode(future, Options{}); !core.ErrInvalidFileFormat.Is(err) {
		t.Errorf("future version: %v", err)
	}
}

func TestTruncated(t *testing.T) {
	data, _ := Encode(fullSnapshot())
	headerLen := len(Magic) + 2
	for n := headerLen; n < len(data); n++ {
		if _, _, err := Decode(data[:n], Options{}); !core.ErrCorruptData.Is(err) {
			t.Fatalf("truncated at %d/%d: %v", n, len(data), err)
		}
	}
}

func TestCorruptFxOrder(t *testing.T) {
	s := state.Default()
	data, _ := Encode(s)
	// The effect order follows the params and three empty layers and the
	// has-IR byte.
	off := len(Magic) + 2 + 6 + 2 + params.Count*8 + 3 + 1
	if data[off] != uint8(state.NumEffectTypes) {
		t.Fatalf("effect count not at expected offset")
	}
	data[off+2] = data[off+1]
	if _, _, err := Decode(data, Options{}); !core.ErrCorruptData.Is(err) {
		t.Errorf("duplicate effect: %v", err)
	}
}

func TestStringBounds(t *testing.T) {
	s := state.Default()
	s.Metadata.Tags = []string{string(make([]byte, core.MaxTagLength+1))}
	if _, err := Encode(s); !core.ErrInvalidArgument.Is(err) {
		t.Errorf("overlong tag encoded: %v", err)
	}
}

func TestNonASCIITag(t *testing.T) {
	s := state.Default()
	s.Metadata.Tags = []string{"café"}
	if _, err := Encode(s); !core.ErrInvalidArgument.Is(err) {
		t.Errorf("non-ASCII tag encoded: %v", err)
	}

	s.Metadata.Tags = []string{"pad", "zqzq"}
	data, err := Encode(s)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	bad := bytes.Replace(data, []byte("zqzq"), []byte("z\xe9zq"), 1)
	if bytes.Equal(bad, data) {
		t.Fatalf("tag not found in encoding")
	}
	if _, _, err := Decode(bad, Options{}); !core.ErrCorruptData.Is(err) {
		t.Errorf("non-ASCII tag decoded: %v", err)
	}
	if _, _, err := Decode(data, Options{}); err != nil {
		t.Errorf("ASCII tags rejected: %s", err)
	}
}

func TestOldVersion(t *testing.T) {
	s := state.Default()
	s.Instruments[0] = core.Sampler(core.LegacyLibraryRef{Author: "FrozenPlain", Name: "Wraith"}.Provisional(), "Choir")
	s.Stash(params.RemovedVelocityMapping(0), float32(params.VelocityMappingMiddleOutwards))
	s.Stash(params.RemovedMasterVelocity, 0.25)

	var buf bytes.Buffer
	if _, err := code(ModeEncode, StreamWriter(&buf), s, Options{}, state.VersionInitial); err != nil {
		t.Fatalf("encode: %s", err)
	}
	got, h, err := Decode(buf.Bytes(), Options{})
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if h.Version != state.VersionInitial || h.Writer != (SemVer{}) {
		t.Errorf("header %+v", h)
	}
	if got.Instruments[0].Sampler.Library != "FrozenPlain - Wraith" {
		t.Errorf("library %q", got.Instruments[0].Sampler.Library)
	}
	if v, ok := got.Stashed(params.RemovedVelocityMapping(0)); !ok || v != float32(params.VelocityMappingMiddleOutwards) {
		t.Errorf("velocity mapping %f, %v", v, ok)
	}
	if v, ok := got.Stashed(params.RemovedMasterVelocity); !ok || v != 0.25 {
		t.Errorf("master velocity %f, %v", v, ok)
	}
	if got.Macros[0].Name != "Macro 1" {
		t.Errorf("macro names not defaulted")
	}
}

func TestUnknownParamsSkipped(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	le := func(v interface{}) { binary.Write(&buf, binary.LittleEndian, v) }
	le(uint16(state.VersionLatest))
	le([3]uint16{1, 2, 3})
	le(uint16(2))
	le(uint32(999999))
	le(float32(5))
	le(params.Get(params.ReverbMix).ID)
	le(float32(7)) // clamped
	buf.Write([]byte{0, 0, 0, 0})
	buf.WriteByte(uint8(state.NumEffectTypes))
	for e := 0; e < int(state.NumEffectTypes); e++ {
		buf.WriteByte(uint8(e))
	}
	buf.Write([]byte{0, 0, 0})
	for m := 0; m < 4; m++ {
		le(uint16(0))
		buf.WriteByte(0)
	}
	le(uint16(0))
	le(uint16(0))
	buf.WriteByte(0)
	le(uint16(0))

	got, h, err := Decode(buf.Bytes(), Options{})
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if h.Writer != (SemVer{1, 2, 3}) {
		t.Errorf("writer %s", h.Writer)
	}
	if got.Param(params.ReverbMix) != 1 {
		t.Errorf("reverb mix %f", got.Param(params.ReverbMix))
	}
	if got.Macros[0].Name != "" {
		t.Errorf("macro name %q", got.Macros[0].Name)
	}
}
