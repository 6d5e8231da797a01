// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package codec

import (
	"bytes"
	"fmt"
	"io"

	log "github.com/golang/glog"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/params"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

// A preset file has the following format (little endian, str is a u16 length
// followed by that many bytes):
//
//	8 bytes   magic "FLOEPRST"
//	u16       state version
//	3 x u16   writer version                  from AddedFloeVersion
//	u16 n     n x (u32 param id, f32 linear value)
//	3 x       layer instrument: u8 type, then a u8 waveform, or a library
//	          and str instrument name
//	u8        has impulse response, then a library and str name
//	u8 n      n x u8 effect type
//	3 x       u8 n, n x (f32 x, f32 y, f32 curve)     from AddedLayerVelocityCurves
//	4 x       str name, u8 n, n x (u32 param id, f32 depth)
//	                                          from AddedMacroAndKeyRangeAndPitchBendParameters
//	str author, str description, u8 n, n x str tag
//	str instance id
//
// A library is str author, str name before ReverseDnsLibraryId and a single
// str after it.

// Magic starts every preset file.
const Magic = "FLOEPRST"

// SemVer is the version of the program that wrote a preset.
type SemVer struct {
	Major, Minor, Patch uint16
}

func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// WriterVersion is stored in every encoded preset.
var WriterVersion = SemVer{Major: 1, Minor: 0, Patch: 0}

// Header is what a decoded preset says about itself.
type Header struct {
	Version state.Version
	// Zero for presets written before AddedFloeVersion.
	Writer SemVer
}

// Options control decoding.
type Options struct {
	// Abbreviated reads parameter values and velocity curves but discards
	// them, leaving the defaults. Indexing only needs the rest.
	Abbreviated bool
}

const (
	maxAuthorLength      = 256
	maxDescriptionLength = 4096
	maxNameLength        = 256
)

// Code encodes s through rw, or decodes into s from rw. Decoding starts from
// the default state so fields the preset's version doesn't have keep their
// defaults; the version adapter fixes them up.
func Code(mode Mode, rw ReadOrWriteFunc, s *state.Snapshot, opts Options) (Header, error) {
	return code(mode, rw, s, opts, state.VersionLatest)
}

// code is Code with the version to encode at. Only tests encode at anything
// but the latest version.
func code(mode Mode, rw ReadOrWriteFunc, s *state.Snapshot, opts Options, version state.Version) (Header, error) {
	c := &coder{mode: mode, rw: rw}
	h := Header{Version: version, Writer: WriterVersion}

	if c.decoding() {
		state.SetToDefault(s)
		if err := decodeHeader(c, &h); err != nil {
			return h, err
		}
	} else {
		c.bytes([]byte(Magic))
		v := uint16(h.Version)
		c.u16(&v)
		if h.Version >= state.VersionAddedFloeVersion {
			c.u16(&h.Writer.Major)
			c.u16(&h.Writer.Minor)
			c.u16(&h.Writer.Patch)
		}
	}

	codeParams(c, s, opts)
	for l := range s.Instruments {
		codeInstrument(c, h.Version, &s.Instruments[l])
	}
	codeIR(c, h.Version, &s.IR)
	codeFxOrder(c, &s.FxOrder)
	if h.Version >= state.VersionAddedLayerVelocityCurves {
		for l := range s.VelocityCurves {
			codeCurve(c, &s.VelocityCurves[l], opts)
		}
	}
	if h.Version >= state.VersionAddedMacroAndKeyRangeAndPitchBendParameters {
		for m := range s.Macros {
			codeMacro(c, &s.Macros[m])
		}
	}
	codeMetadata(c, &s.Metadata)
	c.str(&s.InstanceID, core.MaxInstanceIDLength, "instance id")

	return h, c.err
}

func decodeHeader(c *coder, h *Header) error {
	var magic [len(Magic)]byte
	c.bytes(magic[:])
	if c.err != nil || string(magic[:]) != Magic {
		return fmt.Errorf("%w: bad magic", core.ErrInvalidFileFormat.Error())
	}
	var v uint16
	c.u16(&v)
	if c.err != nil {
		return fmt.Errorf("%w: no version", core.ErrInvalidFileFormat.Error())
	}
	if state.Version(v) > state.VersionLatest {
		return fmt.Errorf("%w: unknown version %d", core.ErrInvalidFileFormat.Error(), v)
	}
	h.Version = state.Version(v)
	h.Writer = SemVer{}
	if h.Version >= state.VersionAddedFloeVersion {
		c.u16(&h.Writer.Major)
		c.u16(&h.Writer.Minor)
		c.u16(&h.Writer.Patch)
	}
	return c.err
}

func codeParams(c *coder, s *state.Snapshot, opts Options) {
	if !c.decoding() {
		// Stashed removed parameters only exist before adaptation.
		var removed []params.Removed
		for r := params.Removed(0); r < params.NumRemoved; r++ {
			if _, set := s.Stashed(r); set {
				if _, ok := params.RemovedID(r); ok {
					removed = append(removed, r)
				}
			}
		}
		n := uint16(params.Count + len(removed))
		c.u16(&n)
		for i := range s.Params {
			id := params.Get(params.Index(i)).ID
			c.u32(&id)
			c.f32(&s.Params[i])
		}
		for _, r := range removed {
			id, _ := params.RemovedID(r)
			v, _ := s.Stashed(r)
			c.u32(&id)
			c.f32(&v)
		}
		return
	}

	var n uint16
	c.u16(&n)

	for j := 0; j < int(n) && c.err == nil; j++ {
		var id uint32
		var v float32
		c.u32(&id)
		c.f32(&v)
		if c.err != nil || opts.Abbreviated {
			continue
		}
		if i, ok := params.ByID(id); ok {
			s.Params[i] = params.Get(i).Sanitise(v)
		} else if r, ok := params.RemovedByID(id); ok {
			s.Stash(r, v)
		} else {
			log.V(1).Infof("skipping unknown parameter id %d", id)
		}
	}
}

func codeLibrary(c *coder, version state.Version, id *core.LibraryID) {
	if version >= state.VersionReverseDNSLibraryID {
		s := string(*id)
		c.str(&s, maxNameLength, "library id")
		*id = core.LibraryID(s)
	} else {
		var ref core.LegacyLibraryRef
		if !c.decoding() {
			ref, _ = id.Legacy()
		}
		c.str(&ref.Author, maxNameLength, "library author")
		c.str(&ref.Name, maxNameLength, "library name")
		if c.decoding() {
			*id = ref.Provisional()
		}
	}
	if c.decoding() && c.err == nil && id.Validate() != nil {
		c.corrupt("bad library id %q", *id)
	}
}

func codeInstrument(c *coder, version state.Version, inst *core.InstrumentID) {
	t := uint8(inst.Type)
	c.u8(&t)
	if c.err != nil {
		return
	}
	if core.InstrumentType(t) >= core.NumInstrumentTypes {
		c.corrupt("instrument type %d", t)
		return
	}
	if c.decoding() {
		*inst = core.InstrumentID{Type: core.InstrumentType(t)}
	}
	switch inst.Type {
	case core.InstrumentWaveformSynth:
		w := uint8(inst.Waveform)
		c.u8(&w)
		if core.WaveformType(w) >= core.NumWaveformTypes {
			c.corrupt("waveform %d", w)
		}
		inst.Waveform = core.WaveformType(w)
	case core.InstrumentSampler:
		codeLibrary(c, version, &inst.Sampler.Library)
		c.str(&inst.Sampler.Name, maxNameLength, "instrument name")
	}
}

func codeIR(c *coder, version state.Version, ir **core.IRID) {
	has := *ir != nil
	c.boolean(&has)
	if c.err != nil || !has {
		return
	}
	if c.decoding() {
		*ir = &core.IRID{}
	}
	codeLibrary(c, version, &(*ir).Library)
	c.str(&(*ir).Name, maxNameLength, "impulse response name")
}

func codeFxOrder(c *coder, order *[state.NumEffectTypes]state.EffectType) {
	n := len(order)
	c.count(&n, len(order), "effects")
	if c.err != nil {
		return
	}
	if n != len(order) {
		c.corrupt("%d effects, want %d", n, len(order))
		return
	}
	for i := range order {
		e := uint8(order[i])
		c.u8(&e)
		order[i] = state.EffectType(e)
	}
	if c.decoding() && c.err == nil && !state.ValidFxOrder(order[:]) {
		c.corrupt("effect order %v is not a permutation", *order)
	}
}

func codeCurve(c *coder, points *[]state.CurvePoint, opts Options) {
	n := len(*points)
	c.count(&n, core.MaxVelocityCurvePoints, "curve points")
	if c.err != nil {
		return
	}
	var decoded []state.CurvePoint
	for i := 0; i < n && c.err == nil; i++ {
		var p state.CurvePoint
		if !c.decoding() {
			p = (*points)[i]
		}
		c.f32(&p.X)
		c.f32(&p.Y)
		c.f32(&p.Curve)
		if c.decoding() {
			if !(p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1 && p.Curve >= -1 && p.Curve <= 1) {
				c.corrupt("curve point %+v out of range", p)
			}
			if len(decoded) > 0 && p.X < decoded[len(decoded)-1].X {
				c.corrupt("curve points not sorted")
			}
			decoded = append(decoded, p)
		}
	}
	if c.decoding() && c.err == nil && !opts.Abbreviated {
		*points = decoded
	}
}

func codeMacro(c *coder, m *state.Macro) {
	c.str(&m.Name, core.MaxMacroNameLength, "macro name")
	n := len(m.Destinations)
	c.count(&n, core.MaxMacroDestinations, "macro destinations")
	if c.err != nil {
		return
	}
	var decoded []state.MacroDestination
	for i := 0; i < n && c.err == nil; i++ {
		var id uint32
		var d state.MacroDestination
		if !c.decoding() {
			d = m.Destinations[i]
			id = params.Get(d.Param).ID
		}
		c.u32(&id)
		c.f32(&d.Value)
		if !c.decoding() || c.err != nil {
			continue
		}
		idx, ok := params.ByID(id)
		if !ok {
			log.V(1).Infof("dropping macro destination with unknown id %d", id)
			continue
		}
		if params.Get(idx).IsMacro() {
			c.corrupt("macro routed to macro %d", id)
			continue
		}
		if d.Value < -1 || d.Value > 1 {
			c.corrupt("macro depth %f", d.Value)
			continue
		}
		d.Param = idx
		decoded = append(decoded, d)
	}
	if c.decoding() {
		m.Destinations = decoded
	}
}

func codeMetadata(c *coder, md *state.Metadata) {
	c.str(&md.Author, maxAuthorLength, "author")
	c.str(&md.Description, maxDescriptionLength, "description")
	n := len(md.Tags)
	c.count(&n, core.MaxTags, "tags")
	if c.err != nil {
		return
	}
	if c.decoding() {
		md.Tags = nil
		if n > 0 {
			md.Tags = make([]string, n)
		}
	}
	for i := 0; i < n; i++ {
		if !c.decoding() && !state.IsASCII(md.Tags[i]) {
			c.fail(fmt.Errorf("%w: tag %q is not ASCII", core.ErrInvalidArgument.Error(), md.Tags[i]))
			return
		}
		c.str(&md.Tags[i], core.MaxTagLength, "tag")
		if c.err == nil && c.decoding() && !state.IsASCII(md.Tags[i]) {
			c.corrupt("tag %d is not ASCII", i)
			return
		}
	}
}

// Encode returns s in the current format.
func Encode(s *state.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes s in the current format to w.
func EncodeTo(w io.Writer, s *state.Snapshot) error {
	_, err := Code(ModeEncode, StreamWriter(w), s, Options{})
	return err
}

// Decode parses a preset. The returned snapshot is at h.Version; callers that
// need the current schema run it through the version adapter.
func Decode(data []byte, opts Options) (s *state.Snapshot, h Header, err error) {
	s = &state.Snapshot{}
	h, err = Code(ModeDecode, MemoryReader(data), s, opts)
	if err != nil {
		return nil, h, err
	}
	return s, h, nil
}

// IsPreset reports whether data starts with the preset magic.
func IsPreset(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}
