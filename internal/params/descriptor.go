// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package params

import (
	"fmt"
	"math"
)

// Index is the position of a parameter in the dense value array of a
// snapshot. It is not stable across schema versions; ID is.
type Index uint16

// ValueType describes how a parameter's float value is interpreted.
type ValueType uint8

const (
	ValueFloat ValueType = iota
	ValueInt
	ValueMenu
	ValueBool
)

func (v ValueType) String() string {
	switch v {
	case ValueFloat:
		return "float"
	case ValueInt:
		return "int"
	case ValueMenu:
		return "menu"
	case ValueBool:
		return "bool"
	}
	return fmt.Sprintf("ValueType(%d)", uint8(v))
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min, Max float32
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v float32) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp pins v to the range.
func (r Range) Clamp(v float32) float32 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Delta is Max - Min.
func (r Range) Delta() float32 {
	return r.Max - r.Min
}

// Projection maps a linear value to the natural value a user sees:
//
//	natural = Range.Min + Range.Delta() * t^Exponent
//
// where t is the linear value normalised into [0, 1]. A zero Exponent means
// the natural and linear values are the same.
type Projection struct {
	Range    Range
	Exponent float32
}

func (p Projection) identity() bool {
	return p.Exponent == 0
}

// Descriptor is the static metadata of one parameter.
type Descriptor struct {
	Index         Index
	ID            uint32 // Stable, used in the binary format.
	Name          string
	ModulePath    []Module
	LinearRange   Range
	DefaultLinear float32
	ValueType     ValueType
	Projection    Projection
	MenuItems     []string // Only for ValueMenu.
}

// Project converts a linear value to its natural value.
func (d *Descriptor) Project(linear float32) float32 {
	if d.Projection.identity() {
		return linear
	}
	t := float64((linear - d.LinearRange.Min) / d.LinearRange.Delta())
	p := d.Projection
	return p.Range.Min + p.Range.Delta()*float32(math.Pow(t, float64(p.Exponent)))
}

// LineariseValue converts a natural value to a linear one. Natural values
// outside of the natural range are clamped when clamp is set; otherwise ok is
// false. The result is quantised for int, menu and bool parameters.
func (d *Descriptor) LineariseValue(natural float32, clamp bool) (linear float32, ok bool) {
	if math.IsNaN(float64(natural)) {
		return 0, false
	}
	if d.Projection.identity() {
		if !d.LinearRange.Contains(natural) {
			if !clamp {
				return 0, false
			}
			natural = d.LinearRange.Clamp(natural)
		}
		return d.Quantise(natural), true
	}

	p := d.Projection
	if !p.Range.Contains(natural) {
		if !clamp {
			return 0, false
		}
		natural = p.Range.Clamp(natural)
	}
	t := float64((natural - p.Range.Min) / p.Range.Delta())
	t = math.Pow(t, 1/float64(p.Exponent))
	linear = d.LinearRange.Min + d.LinearRange.Delta()*float32(t)
	return d.Quantise(d.LinearRange.Clamp(linear)), true
}

// Quantise rounds int, menu and bool values to the nearest whole number.
// Float values are returned unchanged.
func (d *Descriptor) Quantise(v float32) float32 {
	if d.ValueType == ValueFloat {
		return v
	}
	return float32(math.Round(float64(v)))
}

// Sanitise clamps and quantises a linear value read from outside. NaN becomes
// the default.
func (d *Descriptor) Sanitise(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return d.DefaultLinear
	}
	return d.Quantise(d.LinearRange.Clamp(v))
}

// IsMacro reports whether the parameter belongs to the Macro module. Macros
// can't be macro destinations.
func (d *Descriptor) IsMacro() bool {
	return len(d.ModulePath) > 0 && d.ModulePath[0] == ModuleMacro
}

// MenuItem returns the item name for a menu value.
func (d *Descriptor) MenuItem(linear float32) string {
	i := int(math.Round(float64(linear)))
	if i < 0 || i >= len(d.MenuItems) {
		return ""
	}
	return d.MenuItems[i]
}

// Format renders a linear value for display.
func (d *Descriptor) Format(linear float32) string {
	switch d.ValueType {
	case ValueBool:
		if linear >= 0.5 {
			return "on"
		}
		return "off"
	case ValueMenu:
		return d.MenuItem(linear)
	case ValueInt:
		return fmt.Sprintf("%d", int(math.Round(float64(linear))))
	}
	return fmt.Sprintf("%.3f", d.Project(linear))
}

// Module is one segment of a parameter's module path.
type Module uint8

const (
	ModuleMaster Module = iota
	ModuleMacro
	ModuleLayer1
	ModuleLayer2
	ModuleLayer3
	ModuleEffect

	// Layer sub-modules.
	ModuleVolume
	ModuleLoop
	ModuleVolumeEnvelope
	ModuleFilter
	ModuleLfo
	ModuleEq
	ModuleMidi
	ModuleKeyRange

	// Effect sub-modules.
	ModuleDistortion
	ModuleBitCrush
	ModuleCompressor
	ModuleFilterEffect
	ModuleStereoWiden
	ModuleChorus
	ModuleReverb
	ModuleDelay
	ModulePhaser
	ModuleConvolutionReverb
)

var moduleNames = [...]string{
	ModuleMaster:            "Master",
	ModuleMacro:             "Macro",
	ModuleLayer1:            "Layer 1",
	ModuleLayer2:            "Layer 2",
	ModuleLayer3:            "Layer 3",
	ModuleEffect:            "Effect",
	ModuleVolume:            "Volume",
	ModuleLoop:              "Loop",
	ModuleVolumeEnvelope:    "Volume Envelope",
	ModuleFilter:            "Filter",
	ModuleLfo:               "LFO",
	ModuleEq:                "EQ",
	ModuleMidi:              "MIDI",
	ModuleKeyRange:          "Key Range",
	ModuleDistortion:        "Distortion",
	ModuleBitCrush:          "Bit Crush",
	ModuleCompressor:        "Compressor",
	ModuleFilterEffect:      "Filter",
	ModuleStereoWiden:       "Stereo Widen",
	ModuleChorus:            "Chorus",
	ModuleReverb:            "Reverb",
	ModuleDelay:             "Delay",
	ModulePhaser:            "Phaser",
	ModuleConvolutionReverb: "Convolution Reverb",
}

func (m Module) String() string {
	if int(m) < len(moduleNames) {
		return moduleNames[m]
	}
	return fmt.Sprintf("Module(%d)", uint8(m))
}
