// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package state

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/params"
)

// EnforceRanges clamps and quantises every parameter into its descriptor's
// range. It returns how many values had to change.
func (s *Snapshot) EnforceRanges() int {
	n := 0
	for i, v := range s.Params {
		d := params.Get(params.Index(i))
		if fixed := d.Sanitise(v); fixed != v {
			log.V(1).Infof("%s: %f out of range, using %f", d.Name, v, fixed)
			s.Params[i] = fixed
			n++
		}
	}
	return n
}

// ValidFxOrder reports whether order holds every effect exactly once.
func ValidFxOrder(order []EffectType) bool {
	if len(order) != int(NumEffectTypes) {
		return false
	}
	var seen [NumEffectTypes]bool
	for _, e := range order {
		if e >= NumEffectTypes || seen[e] {
			return false
		}
		seen[e] = true
	}
	return true
}

// Validate checks every invariant of a snapshot. The returned error carries
// core.ErrInvalidArgument.
func (s *Snapshot) Validate() error {
	for i, v := range s.Params {
		d := params.Get(params.Index(i))
		if !d.LinearRange.Contains(v) {
			return invalid("%s: %f outside %v", d.Name, v, d.LinearRange)
		}
	}
	if !ValidFxOrder(s.FxOrder[:]) {
		return invalid("fx order %v is not a permutation", s.FxOrder)
	}
	for l, inst := range s.Instruments {
		switch inst.Type {
		case core.InstrumentNone:
		case core.InstrumentWaveformSynth:
			if inst.Waveform >= core.NumWaveformTypes {
				return invalid("layer %d: bad waveform %d", l, inst.Waveform)
			}
		case core.InstrumentSampler:
			if inst.Sampler.Library == "" {
				return invalid("layer %d: sampler instrument without library", l)
			}
		default:
			return invalid("layer %d: bad instrument type %d", l, inst.Type)
		}
	}
	if s.IR != nil && s.IR.Library == "" {
		return invalid("impulse response without library")
	}
	for l, curve := range s.VelocityCurves {
		if err := validateCurve(curve); err != nil {
			return invalid("layer %d velocity curve: %s", l, err)
		}
	}
	for m, macro := range s.Macros {
		if len(macro.Name) > core.MaxMacroNameLength {
			return invalid("macro %d: name too long", m)
		}
		if len(macro.Destinations) > core.MaxMacroDestinations {
			return invalid("macro %d: %d destinations", m, len(macro.Destinations))
		}
		for _, dest := range macro.Destinations {
			if int(dest.Param) >= params.Count {
				return invalid("macro %d: bad destination %d", m, dest.Param)
			}
			if params.Get(dest.Param).IsMacro() {
				return invalid("macro %d: destination is a macro", m)
			}
			if dest.Value < -1 || dest.Value > 1 {
				return invalid("macro %d: depth %f", m, dest.Value)
			}
		}
	}
	if len(s.Metadata.Tags) > core.MaxTags {
		return invalid("%d tags", len(s.Metadata.Tags))
	}
	for _, tag := range s.Metadata.Tags {
		if len(tag) == 0 || len(tag) > core.MaxTagLength || !IsASCII(tag) {
			return invalid("bad tag %q", tag)
		}
	}
	if len(s.InstanceID) > core.MaxInstanceIDLength {
		return invalid("instance id too long")
	}
	return nil
}

// IsASCII reports whether s holds only 7-bit characters.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func validateCurve(points []CurvePoint) error {
	if len(points) > core.MaxVelocityCurvePoints {
		return fmt.Errorf("%d points", len(points))
	}
	for i, p := range points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 || p.Curve < -1 || p.Curve > 1 {
			return fmt.Errorf("point %d out of range", i)
		}
		if i > 0 && p.X < points[i-1].X {
			return fmt.Errorf("point %d not sorted", i)
		}
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidArgument.Error(), fmt.Sprintf(format, args...))
}
