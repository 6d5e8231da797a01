// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package state

import (
	"fmt"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/params"
)

// Version is a revision of the preset schema. Versions only ever get
// appended; a preset is upgraded by walking every step between its version
// and VersionLatest.
type Version uint16

const (
	VersionInitial Version = iota
	VersionAddedLayerVelocityCurves
	VersionAddedFloeVersion
	VersionAddedMacroAndKeyRangeAndPitchBendParameters
	VersionReverseDNSLibraryID

	NumVersions
	VersionLatest = NumVersions - 1
)

var versionNames = [NumVersions]string{
	VersionInitial:                                     "Initial",
	VersionAddedLayerVelocityCurves:                    "AddedLayerVelocityCurves",
	VersionAddedFloeVersion:                            "AddedFloeVersion",
	VersionAddedMacroAndKeyRangeAndPitchBendParameters: "AddedMacroAndKeyRangeAndPitchBendParameters",
	VersionReverseDNSLibraryID:                         "ReverseDnsLibraryId",
}

func (v Version) String() string {
	if v < NumVersions {
		return versionNames[v]
	}
	return fmt.Sprintf("Version(%d)", uint16(v))
}

// Source is where a snapshot came from. Some upgrade steps differ for host
// session state because automation may still point at removed parameters.
type Source uint8

const (
	SourcePresetFile Source = iota
	SourceDaw
)

func (s Source) String() string {
	if s == SourceDaw {
		return "daw"
	}
	return "preset-file"
}

// EffectType is one of the effects in the master chain.
type EffectType uint8

const (
	EffectDistortion EffectType = iota
	EffectBitCrush
	EffectCompressor
	EffectFilter
	EffectStereoWiden
	EffectChorus
	EffectReverb
	EffectDelay
	EffectPhaser
	EffectConvolutionReverb
	NumEffectTypes
)

var effectNames = [NumEffectTypes]string{
	"Distortion", "Bit Crush", "Compressor", "Filter", "Stereo Widen",
	"Chorus", "Reverb", "Delay", "Phaser", "Convolution Reverb",
}

func (e EffectType) String() string {
	if e < NumEffectTypes {
		return effectNames[e]
	}
	return fmt.Sprintf("EffectType(%d)", uint8(e))
}

// DefaultFxOrder returns every effect in declaration order.
func DefaultFxOrder() (order [NumEffectTypes]EffectType) {
	for i := range order {
		order[i] = EffectType(i)
	}
	return
}

// CurvePoint is one point of a layer's velocity curve. Curve bends the
// segment that starts at this point: 0 is linear, positive is exponential,
// negative is logarithmic.
type CurvePoint struct {
	X, Y, Curve float32
}

// MacroDestination routes a macro to a parameter with a signed depth in
// [-1, 1].
type MacroDestination struct {
	Param params.Index
	Value float32
}

// Macro is one user-assignable knob. The knob value itself is the parameter
// params.MacroIndex(i).
type Macro struct {
	Name         string
	Destinations []MacroDestination
}

// Metadata is the user-facing description of a preset.
type Metadata struct {
	Author      string
	Description string
	Tags        []string
}

// OptionalValue holds the value of a removed parameter, if one was read.
type OptionalValue struct {
	Value float32
	Set   bool
}

// Snapshot is the complete state of the instrument: everything a preset file
// or a host session stores.
type Snapshot struct {
	Params         [params.Count]float32
	Instruments    [core.NumLayers]core.InstrumentID
	IR             *core.IRID
	FxOrder        [NumEffectTypes]EffectType
	VelocityCurves [core.NumLayers][]CurvePoint
	Macros         [core.NumMacros]Macro
	Metadata       Metadata
	InstanceID     string

	// Removed parameters read while decoding. The version adapter consumes
	// and clears them.
	Removed [params.NumRemoved]OptionalValue
}

// Param returns the linear value of a parameter.
func (s *Snapshot) Param(i params.Index) float32 {
	return s.Params[i]
}

// SetParam sets the linear value of a parameter.
func (s *Snapshot) SetParam(i params.Index, v float32) {
	s.Params[i] = v
}

// LayerParam returns the linear value of a layer parameter.
func (s *Snapshot) LayerParam(layer int, p params.LayerParam) float32 {
	return s.Params[params.LayerIndex(layer, p)]
}

// SetLayerParam sets the linear value of a layer parameter.
func (s *Snapshot) SetLayerParam(layer int, p params.LayerParam, v float32) {
	s.Params[params.LayerIndex(layer, p)] = v
}

// Natural returns the projected value of a parameter.
func (s *Snapshot) Natural(i params.Index) float32 {
	return params.Get(i).Project(s.Params[i])
}

// SetNatural linearises and stores a natural value, clamping it to the
// parameter's range.
func (s *Snapshot) SetNatural(i params.Index, natural float32) {
	d := params.Get(i)
	if v, ok := d.LineariseValue(natural, true); ok {
		s.Params[i] = v
	} else {
		s.Params[i] = d.DefaultLinear
	}
}

// Bool reads a bool parameter.
func (s *Snapshot) Bool(i params.Index) bool {
	return s.Params[i] >= 0.5
}

// SetBool writes a bool parameter.
func (s *Snapshot) SetBool(i params.Index, b bool) {
	if b {
		s.Params[i] = 1
	} else {
		s.Params[i] = 0
	}
}

// Stash records the value of a removed parameter.
func (s *Snapshot) Stash(r params.Removed, v float32) {
	s.Removed[r] = OptionalValue{Value: v, Set: true}
}

// Stashed returns the value of a removed parameter, if one was read.
func (s *Snapshot) Stashed(r params.Removed) (float32, bool) {
	o := s.Removed[r]
	return o.Value, o.Set
}

// ClearRemoved forgets every stashed removed parameter.
func (s *Snapshot) ClearRemoved() {
	s.Removed = [params.NumRemoved]OptionalValue{}
}

// UsedLibraries returns the distinct libraries referenced by the layers and
// the impulse response, in first-use order.
func (s *Snapshot) UsedLibraries() []core.LibraryID {
	var out []core.LibraryID
	add := func(id core.LibraryID) {
		for _, have := range out {
			if have == id {
				return
			}
		}
		out = append(out, id)
	}
	for _, inst := range s.Instruments {
		if inst.Type == core.InstrumentSampler {
			add(inst.Sampler.Library)
		}
	}
	if s.IR != nil {
		add(s.IR.Library)
	}
	return out
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	if s.IR != nil {
		ir := *s.IR
		c.IR = &ir
	}
	for l := range s.VelocityCurves {
		c.VelocityCurves[l] = cloneSlice(s.VelocityCurves[l])
	}
	for m := range s.Macros {
		c.Macros[m].Destinations = cloneSlice(s.Macros[m].Destinations)
	}
	c.Metadata.Tags = cloneSlice(s.Metadata.Tags)
	return &c
}

func cloneSlice[T any](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	return append([]T(nil), in...)
}

// Equal reports whether two snapshots hold the same state. Empty and nil
// slices compare equal.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s.Params != o.Params || s.Instruments != o.Instruments || s.FxOrder != o.FxOrder ||
		s.InstanceID != o.InstanceID || s.Removed != o.Removed {
		return false
	}
	if (s.IR == nil) != (o.IR == nil) || (s.IR != nil && *s.IR != *o.IR) {
		return false
	}
	for l := range s.VelocityCurves {
		if !sliceEqual(s.VelocityCurves[l], o.VelocityCurves[l]) {
			return false
		}
	}
	for m := range s.Macros {
		if s.Macros[m].Name != o.Macros[m].Name ||
			!sliceEqual(s.Macros[m].Destinations, o.Macros[m].Destinations) {
			return false
		}
	}
	return s.Metadata.Author == o.Metadata.Author &&
		s.Metadata.Description == o.Metadata.Description &&
		sliceEqual(s.Metadata.Tags, o.Metadata.Tags)
}

func sliceEqual[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
