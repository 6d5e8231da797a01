// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package state

import (
	"fmt"
	"math/rand"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/params"
)

// DefaultMacroName returns the name a macro has until the user renames it.
func DefaultMacroName(macro int) string {
	return fmt.Sprintf("Macro %d", macro+1)
}

// Default returns the state of a freshly opened instrument.
func Default() *Snapshot {
	s := &Snapshot{}
	SetToDefault(s)
	return s
}

// SetToDefault resets every field of s.
func SetToDefault(s *Snapshot) {
	*s = Snapshot{
		Params:  params.Defaults(),
		FxOrder: DefaultFxOrder(),
	}
	for m := range s.Macros {
		s.Macros[m].Name = DefaultMacroName(m)
	}
}

// Randomise gives every parameter a random value within its range and
// shuffles the effect order. Levels, macros, mute/solo and key ranges keep
// their defaults so the result is always audible. Instruments, curves and
// metadata are left alone.
func Randomise(s *Snapshot, rng *rand.Rand) {
	for i := range s.Params {
		idx := params.Index(i)
		d := params.Get(idx)
		if keepOnRandomise(idx) {
			s.Params[i] = d.DefaultLinear
			continue
		}
		r := d.LinearRange
		s.Params[i] = d.Quantise(r.Min + r.Delta()*rng.Float32())
	}
	rng.Shuffle(len(s.FxOrder), func(i, j int) {
		s.FxOrder[i], s.FxOrder[j] = s.FxOrder[j], s.FxOrder[i]
	})
}

func keepOnRandomise(i params.Index) bool {
	if i == params.MasterVolume || params.Get(i).IsMacro() {
		return true
	}
	_, p, ok := params.LayerOf(i)
	if !ok {
		return false
	}
	switch p {
	case params.LayerVolume, params.LayerMute, params.LayerSolo,
		params.LayerKeyRangeLow, params.LayerKeyRangeHigh,
		params.LayerKeyRangeLowFade, params.LayerKeyRangeHighFade:
		return true
	}
	return false
}

// HasInstrument reports whether any layer plays something.
func (s *Snapshot) HasInstrument() bool {
	for _, inst := range s.Instruments {
		if inst.Type != core.InstrumentNone {
			return true
		}
	}
	return false
}
