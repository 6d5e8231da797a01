// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

// Package adapter upgrades snapshots decoded from older presets to the
// current schema. Each step writes backward compatible values for what its
// version added, so older presets keep sounding the way they did.
package adapter

import (
	"math"

	log "github.com/golang/glog"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/params"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

// AdaptNewerParams raises s from version 'from' to state.VersionLatest. It is
// a no-op for snapshots that are already current.
func AdaptNewerParams(s *state.Snapshot, from state.Version, source state.Source) {
	if from > state.VersionLatest {
		log.Errorf("snapshot version %d is newer than %s", from, state.VersionLatest)
		return
	}
	for v := from + 1; v <= state.VersionLatest; v++ {
		log.V(2).Infof("adapting snapshot to %s", v)
		switch v {
		case state.VersionAddedLayerVelocityCurves:
			addLayerVelocityCurves(s, source)
		case state.VersionAddedFloeVersion:
			// Only the file header changed.
		case state.VersionAddedMacroAndKeyRangeAndPitchBendParameters:
			addMacrosAndKeyRangeAndPitchBend(s)
		case state.VersionReverseDNSLibraryID:
			reverseDNSLibraryIDs(s)
		}
	}

	if from < state.VersionLatest {
		s.ClearRemoved()
	}
	if n := s.EnforceRanges(); n > 0 {
		log.Errorf("%d parameters out of range after adapting from %s", n, from)
	}
}

// curveForVelocityMapping gives the curve that sounds like a removed velocity
// mapping mode.
func curveForVelocityMapping(m params.VelocityMappingMode) []state.CurvePoint {
	switch m {
	case params.VelocityMappingTopToBottom:
		return []state.CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 1}}
	case params.VelocityMappingBottomToTop:
		return []state.CurvePoint{{X: 0, Y: 1}, {X: 1, Y: 0}}
	case params.VelocityMappingTopToMiddle:
		return []state.CurvePoint{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 1, Y: 1}}
	case params.VelocityMappingMiddleOutwards:
		return []state.CurvePoint{{X: 0, Y: 0}, {X: 0.5, Y: 1}, {X: 1, Y: 0}}
	case params.VelocityMappingMiddleToBottom:
		return []state.CurvePoint{{X: 0, Y: 1}, {X: 0.5, Y: 0}, {X: 1, Y: 0}}
	}
	return state.FlatCurve(1)
}

func addLayerVelocityCurves(s *state.Snapshot, source state.Source) {
	// Host automation may still target the removed mapping parameter, so
	// session state gets flat curves and keeps velocity out of the picture.
	if source == state.SourceDaw {
		for l := range s.VelocityCurves {
			s.VelocityCurves[l] = state.FlatCurve(1)
		}
		return
	}

	master, _ := s.Stashed(params.RemovedMasterVelocity)
	m := math.Min(math.Max(float64(master), 0), 1)
	for l := range s.VelocityCurves {
		mode, _ := s.Stashed(params.RemovedVelocityMapping(l))
		idx := math.Round(float64(mode))
		if idx < 0 || idx >= float64(params.NumVelocityMappingModes) {
			idx = float64(params.VelocityMappingNone)
		}
		points := curveForVelocityMapping(params.VelocityMappingMode(idx))
		for i := range points {
			p := &points[i]
			y := float64(p.Y)
			p.Y = float32(math.Max(y-y*(1-float64(p.X))*m, 0))
		}
		s.VelocityCurves[l] = points
	}
}

func addMacrosAndKeyRangeAndPitchBend(s *state.Snapshot) {
	for m := range s.Macros {
		s.SetParam(params.MacroIndex(m), 0)
		s.Macros[m] = state.Macro{Name: state.DefaultMacroName(m)}
	}
	for l := 0; l < core.NumLayers; l++ {
		s.SetLayerParam(l, params.LayerKeyRangeLow, 0)
		s.SetLayerParam(l, params.LayerKeyRangeHigh, 127)
		s.SetLayerParam(l, params.LayerKeyRangeLowFade, 0)
		s.SetLayerParam(l, params.LayerKeyRangeHighFade, 0)
		s.SetLayerParam(l, params.LayerPitchBendRange, 0)
	}
}

func rewriteLibrary(id *core.LibraryID) {
	if ref, ok := id.Legacy(); ok {
		*id = ref.ReverseDNS()
	}
}

func reverseDNSLibraryIDs(s *state.Snapshot) {
	for l := range s.Instruments {
		if s.Instruments[l].Type == core.InstrumentSampler {
			rewriteLibrary(&s.Instruments[l].Sampler.Library)
		}
	}
	if s.IR != nil {
		rewriteLibrary(&s.IR.Library)
	}
}
