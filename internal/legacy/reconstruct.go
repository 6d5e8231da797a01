// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package legacy

import (
	"math"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/params"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

// Values Mirage used when a parameter is missing from a preset.
const (
	defaultReverbDryDb        = 0
	defaultFreeverbWetPercent = 30
	defaultSvWetDb            = -6
	defaultReverbSizePercent  = 50
	defaultSvModFreqHz        = 0.2
	defaultPhaserDb           = 0
	defaultPhaserDepthPercent = 50
	defaultPhaserCenterHz     = 440
	defaultDelayTimeMs        = 250
	defaultDelayFeedbackPct   = 50
	defaultDelayWetDb         = -6
	delayWetToMix             = 0.3
	freeverbDecayPerSize      = 0.5
	svDecayPerSize            = 0.8
)

func stashed(s *state.Snapshot, r params.Removed, def float64) float64 {
	if v, ok := s.Stashed(r); ok {
		return float64(v)
	}
	return def
}

func anyStashed(s *state.Snapshot, first, last params.Removed) bool {
	for r := first; r <= last; r++ {
		if _, ok := s.Stashed(r); ok {
			return true
		}
	}
	return false
}

func ratio(wet, dry float64) float64 {
	if wet+dry <= 0 {
		return 0
	}
	return wet / (wet + dry)
}

// reconstructReverb folds Mirage's two reverb algorithms into the current
// reverb.
func reconstructReverb(s *state.Snapshot) {
	if !anyStashed(s, params.RemovedReverbOnSwitch, params.RemovedReverbSvFilterBidirectional) {
		return
	}
	freeverb := stashed(s, params.RemovedReverbUseFreeverbSwitch, 0) >= 0.5

	dry := dbToAmp(stashed(s, params.RemovedReverbDryDb, defaultReverbDryDb))
	var wet float64
	if freeverb {
		wet = stashed(s, params.RemovedReverbFreeverbWetPercent, defaultFreeverbWetPercent) / 100
	} else {
		wet = dbToAmp(stashed(s, params.RemovedReverbSvWetDb, defaultSvWetDb))
	}
	size := stashed(s, params.RemovedReverbSizePercent, defaultReverbSizePercent) / 100

	s.SetBool(params.ReverbOn, stashed(s, params.RemovedReverbOnSwitch, 0) >= 0.5)
	s.SetNatural(params.ReverbMix, float32(ratio(wet, dry)))
	s.SetNatural(params.ReverbSize, float32(size))
	decay := size * svDecayPerSize
	if freeverb {
		decay = size * freeverbDecayPerSize
	}
	s.SetParam(params.ReverbDecayTimeMs, params.Get(params.ReverbDecayTimeMs).LinearRange.Clamp(float32(decay)))
	s.SetNatural(params.ReverbLowShelfGain, 0)
	s.SetNatural(params.ReverbHighShelfGain, 0)

	lowPass := params.Get(params.ReverbPreLowPassCutoff).LinearRange
	highPass := params.Get(params.ReverbPreHighPassCutoff).LinearRange
	s.SetNatural(params.ReverbPreLowPassCutoff, lowPass.Max)
	s.SetNatural(params.ReverbPreHighPassCutoff, highPass.Min)
	if freeverb {
		s.SetNatural(params.ReverbDelay, 0)
		s.SetNatural(params.ReverbChorusAmount, 0)
		return
	}

	s.SetNatural(params.ReverbDelay, float32(stashed(s, params.RemovedReverbSvPreDelayMs, 0)))
	s.SetNatural(params.ReverbChorusFrequency, float32(stashed(s, params.RemovedReverbSvModFreqHz, defaultSvModFreqHz)))
	s.SetNatural(params.ReverbChorusAmount, float32(stashed(s, params.RemovedReverbSvModDepthPercent, 0)/100))

	// One knob used to sweep from high-pass (negative) to low-pass (positive).
	v := float32(stashed(s, params.RemovedReverbSvFilterBidirectional, 0) / 100)
	if v < 0 {
		s.SetNatural(params.ReverbPreHighPassCutoff, highPass.Min-v*highPass.Delta())
	} else {
		s.SetNatural(params.ReverbPreLowPassCutoff, lowPass.Max-v*lowPass.Delta())
	}
}

// hzToSemitones converts a frequency to a MIDI note number.
func hzToSemitones(hz float64) float64 {
	return 12*math.Log2(hz/440) + 69
}

func reconstructPhaser(s *state.Snapshot) {
	if !anyStashed(s, params.RemovedPhaserDryDb, params.RemovedPhaserCenterHz) {
		return
	}
	dry := dbToAmp(stashed(s, params.RemovedPhaserDryDb, defaultPhaserDb))
	wet := dbToAmp(stashed(s, params.RemovedPhaserWetDb, defaultPhaserDb))
	s.SetNatural(params.PhaserMix, float32(ratio(wet, dry)))

	depth := params.Get(params.PhaserModDepth).LinearRange
	pct := stashed(s, params.RemovedPhaserModDepthPercent, defaultPhaserDepthPercent)
	s.SetNatural(params.PhaserModDepth, depth.Min+float32(pct/100)*depth.Delta())

	hz := stashed(s, params.RemovedPhaserCenterHz, defaultPhaserCenterHz)
	if hz > 0 {
		s.SetNatural(params.PhaserCenterSemitones, float32(hzToSemitones(hz)))
	}
}

func reconstructDelay(s *state.Snapshot) {
	if !anyStashed(s, params.RemovedDelayUseLegacyAlgorithmSwitch, params.RemovedDelayFilterBidirectional) {
		return
	}
	legacyAlgorithm := stashed(s, params.RemovedDelayUseLegacyAlgorithmSwitch, 0) >= 0.5

	timeL, timeR := params.RemovedDelaySvTimeLMs, params.RemovedDelaySvTimeRMs
	if legacyAlgorithm {
		timeL, timeR = params.RemovedDelayOldTimeLMs, params.RemovedDelayOldTimeRMs
	}
	s.SetNatural(params.DelayTimeLMs, float32(stashed(s, timeL, defaultDelayTimeMs)))
	s.SetNatural(params.DelayTimeRMs, float32(stashed(s, timeR, defaultDelayTimeMs)))

	if v, ok := s.Stashed(params.RemovedDelaySyncedTimeL); ok {
		s.SetNatural(params.DelayTimeSyncedL, v)
	}
	if v, ok := s.Stashed(params.RemovedDelaySyncedTimeR); ok {
		s.SetNatural(params.DelayTimeSyncedR, v)
	}
	s.SetNatural(params.DelayStereoMode, float32(stashed(s, params.RemovedDelayModeLegacy, float64(params.DelayStereo))))

	feedback := stashed(s, params.RemovedDelayFeedbackLegacy, defaultDelayFeedbackPct) / 100
	if !legacyAlgorithm {
		feedback = math.Pow(math.Max(feedback, 0), 0.1)
	}
	s.SetNatural(params.DelayFeedback, float32(feedback))

	wet := dbToAmp(stashed(s, params.RemovedDelayWetDb, defaultDelayWetDb))
	s.SetNatural(params.DelayMix, float32(wet*delayWetToMix))

	cutoff := params.Get(params.DelayFilterCutoffSemitones).LinearRange
	mid := cutoff.Min + cutoff.Delta()/2
	v := float32(stashed(s, params.RemovedDelayFilterBidirectional, 0) / 100)
	s.SetNatural(params.DelayFilterCutoffSemitones, mid+v*cutoff.Delta()/2)
}

// reconstructLoopModes collapses the loop and ping-pong switches of each
// layer into a loop mode.
func reconstructLoopModes(s *state.Snapshot) {
	for l := 0; l < core.NumLayers; l++ {
		on := stashed(s, params.RemovedLoopOn(l), 0) >= 0.5
		pingPong := stashed(s, params.RemovedLoopPingPong(l), 0) >= 0.5
		mode := params.LoopInstrumentDefault
		switch {
		case on && pingPong:
			mode = params.LoopPingPong
		case on:
			mode = params.LoopStandard
		}
		s.SetLayerParam(l, params.LayerLoopMode, float32(mode))
	}
}

// reproduceBugs makes presets from buggy Mirage versions keep sounding the
// way they did.
func reproduceBugs(s *state.Snapshot, mirageVersion int) {
	for l := 0; l < core.NumLayers; l++ {
		pingPong := params.LoopMode(s.LayerParam(l, params.LayerLoopMode)).IsPingPong()

		if mirageVersion < VersionFixedKeytrackAndPingPongOffset {
			if !s.Bool(params.LayerIndex(l, params.LayerKeytrack)) {
				s.SetLayerParam(l, params.LayerTuneSemitone, 0)
				s.SetLayerParam(l, params.LayerTuneCents, 0)
			}
			if pingPong && s.LayerParam(l, params.LayerSampleOffset) > 2*s.LayerParam(l, params.LayerLoopEnd) {
				s.SetLayerParam(l, params.LayerMute, 1)
			}
		}
		if mirageVersion < VersionFixedPingPongCrossfade && pingPong {
			s.SetLayerParam(l, params.LayerLoopCrossfade, 0)
		}
	}
}
