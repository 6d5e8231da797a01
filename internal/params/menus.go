// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package params

// Menu parameters store the numeric value of one of these enums. The item
// tables hold the current display strings, indexed by enum value.

// LoopMode selects how a layer loops its sample.
type LoopMode uint8

const (
	LoopInstrumentDefault LoopMode = iota
	LoopBuiltInStandard
	LoopBuiltInPingPong
	LoopNone
	LoopStandard
	LoopPingPong
	NumLoopModes
)

var loopModeItems = []string{
	"Instrument Default",
	"Built-in Loop",
	"Built-in Ping-pong Loop",
	"No Loop",
	"Standard Loop",
	"Ping-pong Loop",
}

// IsPingPong reports whether the mode plays loops back and forth.
func (m LoopMode) IsPingPong() bool {
	return m == LoopPingPong || m == LoopBuiltInPingPong
}

// LayerFilterMode is the layer filter's response.
type LayerFilterMode uint8

const (
	LayerFilterLowPass LayerFilterMode = iota
	LayerFilterBandPass
	LayerFilterHighPass
	LayerFilterUnitGainBandPass
	LayerFilterBandShelf
	LayerFilterNotch
	LayerFilterAllPass
	LayerFilterPeak
	NumLayerFilterTypes
)

var layerFilterTypeItems = []string{
	"Low-pass",
	"Band-pass",
	"High-pass",
	"Unit Gain Band-pass",
	"Band Shelf",
	"Notch",
	"All-pass",
	"Peak",
}

// LfoShape is the LFO waveform.
type LfoShape uint8

const (
	LfoSine LfoShape = iota
	LfoTriangle
	LfoSawtooth
	LfoSquare
	LfoRandomGlide
	LfoRandomStep
	NumLfoShapes
)

var lfoShapeItems = []string{"Sine", "Triangle", "Sawtooth", "Square", "Random Glide", "Random Step"}

// LfoRestart selects whether the LFO phase restarts per note.
type LfoRestart uint8

const (
	LfoRetrigger LfoRestart = iota
	LfoFreeRunning
	NumLfoRestartModes
)

var lfoRestartItems = []string{"Retrigger", "Free"}

// LfoDestination is what the layer LFO modulates.
type LfoDestination uint8

const (
	LfoDestVolume LfoDestination = iota
	LfoDestFilter
	LfoDestPan
	LfoDestPitch
	NumLfoDestinations
)

var lfoDestinationItems = []string{"Volume", "Filter", "Pan", "Pitch"}

// EqType is the response of one EQ band.
type EqType uint8

const (
	EqPeak EqType = iota
	EqLowShelf
	EqHighShelf
	NumEqTypes
)

var eqTypeItems = []string{"Peak", "Low Shelf", "High Shelf"}

// DistortionType is the distortion algorithm.
type DistortionType uint8

const (
	DistortionTubeLog DistortionType = iota
	DistortionTubeAsym3
	DistortionSine
	DistortionRaph1
	DistortionDecimate
	DistortionAtan
	DistortionClip
	NumDistortionTypes
)

var distortionTypeItems = []string{"Tube Log", "Tube Asym3", "Sine", "Raph1", "Decimate", "Atan", "Clip"}

// FilterEffectType is the response of the filter effect.
type FilterEffectType uint8

const (
	FilterEffectLowPass FilterEffectType = iota
	FilterEffectHighPass
	FilterEffectBandPass
	FilterEffectNotch
	FilterEffectPeak
	FilterEffectLowShelf
	FilterEffectHighShelf
	NumFilterEffectTypes
)

var filterEffectTypeItems = []string{"Low-pass", "High-pass", "Band-pass", "Notch", "Peak", "Low Shelf", "High Shelf"}

// DelayMode is the stereo behaviour of the delay.
type DelayMode uint8

const (
	DelayMono DelayMode = iota
	DelayStereo
	DelayPingPong
	DelayMidSide
	NumDelayModes
)

var delayModeItems = []string{"Mono", "Stereo", "Ping-pong", "Mid/Side"}

// SyncedTime is a tempo-synced note length. For every base length there is a
// triplet, a plain and a dotted variant, in that order.
type SyncedTime uint8

var syncedTimeItems = []string{
	"1/64T", "1/64", "1/64D",
	"1/32T", "1/32", "1/32D",
	"1/16T", "1/16", "1/16D",
	"1/8T", "1/8", "1/8D",
	"1/4T", "1/4", "1/4D",
	"1/2T", "1/2", "1/2D",
	"1/1T", "1/1", "1/1D",
	"2/1T", "2/1", "2/1D",
}

const (
	Synced1_8 SyncedTime = 10
	Synced1_4 SyncedTime = 13
	NumSynced SyncedTime = 24
)

// SyncedTimeFromString looks up a synced time by its display string.
func SyncedTimeFromString(s string) (SyncedTime, bool) {
	for i, item := range syncedTimeItems {
		if item == s {
			return SyncedTime(i), true
		}
	}
	return 0, false
}

func (t SyncedTime) String() string {
	if int(t) < len(syncedTimeItems) {
		return syncedTimeItems[t]
	}
	return "?"
}

// VelocityMappingMode is the removed per-layer velocity mapping selector.
// Velocity curves replaced it.
type VelocityMappingMode uint8

const (
	VelocityMappingNone VelocityMappingMode = iota
	VelocityMappingTopToBottom
	VelocityMappingBottomToTop
	VelocityMappingTopToMiddle
	VelocityMappingMiddleOutwards
	VelocityMappingMiddleToBottom
	NumVelocityMappingModes
)

var velocityMappingItems = []string{
	"None",
	"Top To Bottom",
	"Bottom To Top",
	"Top To Middle",
	"Middle Outwards",
	"Middle To Bottom",
}
