// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package params

import (
	"fmt"
	"math"

	"github.com/westerndigitalcorporation/floe/internal/core"
)

/*

The parameter table is the single source of truth for the width of the
schema. Indexes are laid out as

	[0, NumGlobalParams)                        global parameters
	[NumGlobalParams, Count)                    layer 1 | layer 2 | layer 3

Changing Count means presets written before the change need an adapter step,
so Count is pinned at compile time below. Bump the state version, add the step
and then update the pin.

*/

// Global parameters.
const (
	MasterVolume Index = iota
	MasterTimbre
	MasterDynamics

	Macro1
	Macro2
	Macro3
	Macro4

	DistortionOn
	DistortionAlgorithm
	DistortionDrive

	BitCrushOn
	BitCrushBits
	BitCrushBitRate
	BitCrushWet
	BitCrushDry

	CompressorOn
	CompressorThreshold
	CompressorRatio
	CompressorGain
	CompressorAutoGain

	FilterOn
	FilterType
	FilterCutoff
	FilterResonance
	FilterGain

	StereoWidenOn
	StereoWidenWidth

	ChorusOn
	ChorusRate
	ChorusHighpass
	ChorusDepth
	ChorusWet
	ChorusDry

	ReverbOn
	ReverbMix
	ReverbSize
	ReverbDecayTimeMs
	ReverbDelay
	ReverbChorusFrequency
	ReverbChorusAmount
	ReverbPreLowPassCutoff
	ReverbPreHighPassCutoff
	ReverbLowShelfCutoff
	ReverbLowShelfGain
	ReverbHighShelfCutoff
	ReverbHighShelfGain

	DelayOn
	DelayTimeSyncSwitch
	DelayTimeLMs
	DelayTimeRMs
	DelayTimeSyncedL
	DelayTimeSyncedR
	DelayFeedback
	DelayStereoMode
	DelayFilterCutoffSemitones
	DelayFilterSpread
	DelayMix

	PhaserOn
	PhaserFeedback
	PhaserModFreqHz
	PhaserCenterSemitones
	PhaserShape
	PhaserModDepth
	PhaserStereoAmount
	PhaserMix

	ConvolutionReverbOn
	ConvolutionReverbHighpass
	ConvolutionReverbWet
	ConvolutionReverbDry

	NumGlobalParams
)

// LayerParam is a parameter that every layer has. Use LayerIndex to get the
// Index for a particular layer.
type LayerParam uint8

const (
	LayerVolume LayerParam = iota
	LayerMute
	LayerSolo
	LayerPan
	LayerTuneCents
	LayerTuneSemitone

	LayerLoopMode
	LayerLoopStart
	LayerLoopEnd
	LayerLoopCrossfade
	LayerSampleOffset
	LayerReverse

	LayerVolEnvOn
	LayerVolumeAttack
	LayerVolumeDecay
	LayerVolumeSustain
	LayerVolumeRelease

	LayerFilterOn
	LayerFilterCutoff
	LayerFilterResonance
	LayerFilterType
	LayerFilterEnvAmount
	LayerFilterAttack
	LayerFilterDecay
	LayerFilterSustain
	LayerFilterRelease

	LayerLfoOn
	LayerLfoShape
	LayerLfoRestart
	LayerLfoAmount
	LayerLfoDestination
	LayerLfoRateTempoSynced
	LayerLfoRateHz
	LayerLfoSyncSwitch

	LayerEqOn
	LayerEqFreq1
	LayerEqResonance1
	LayerEqGain1
	LayerEqType1
	LayerEqFreq2
	LayerEqResonance2
	LayerEqGain2
	LayerEqType2

	LayerKeytrack
	LayerMonophonic
	LayerCC64Retrigger
	LayerMidiTranspose
	LayerKeyRangeLow
	LayerKeyRangeHigh
	LayerKeyRangeLowFade
	LayerKeyRangeHighFade
	LayerPitchBendRange

	NumLayerParams
)

// Count is the number of parameters in a snapshot.
const Count = int(NumGlobalParams) + core.NumLayers*int(NumLayerParams)

// Fails to compile unless Count == 225.
const (
	_ = uint(Count - 225)
	_ = uint(225 - Count)
)

// LayerIndex returns the Index of a layer parameter.
func LayerIndex(layer int, p LayerParam) Index {
	return NumGlobalParams + Index(layer)*Index(NumLayerParams) + Index(p)
}

// LayerOf splits an Index into its layer and layer parameter. ok is false for
// global parameters.
func LayerOf(i Index) (layer int, p LayerParam, ok bool) {
	if i < NumGlobalParams || int(i) >= Count {
		return 0, 0, false
	}
	off := int(i - NumGlobalParams)
	return off / int(NumLayerParams), LayerParam(off % int(NumLayerParams)), true
}

// MacroIndex returns the Index of a macro knob.
func MacroIndex(macro int) Index {
	return Macro1 + Index(macro)
}

// layerIDBase is added to a layer parameter's id, per layer.
const layerIDBase = 1000

// Natural ranges shared by several parameters.
var (
	ampProjection    = Projection{Range: Range{0, 2}, Exponent: 3}
	msProjection     = Projection{Range: Range{0, 10000}, Exponent: 3}
	hzAudioProj      = Projection{Range: Range{20, 20000}, Exponent: 3}
	hzLfoProj        = Projection{Range: Range{0.01, 20}, Exponent: 3}
	unitRange        = Range{0, 1}
	bipolarRange     = Range{-1, 1}
	semitoneCutRange = Range{0, 135}
	dbRange          = Range{-24, 24}
	midiNoteRange    = Range{0, 127}
)

// ampOne is the linear value that projects to an amplitude of 1.
var ampOne = float32(math.Cbrt(0.5))

type paramDef struct {
	id     uint32
	module Module
	name   string
	typ    ValueType
	lin    Range
	def    float32
	proj   Projection
	menu   []string
}

func floatP(id uint32, m Module, name string, lin Range, def float32) paramDef {
	return paramDef{id: id, module: m, name: name, typ: ValueFloat, lin: lin, def: def}
}

func projP(id uint32, m Module, name string, proj Projection, def float32) paramDef {
	return paramDef{id: id, module: m, name: name, typ: ValueFloat, lin: unitRange, def: def, proj: proj}
}

func intP(id uint32, m Module, name string, lo, hi, def float32) paramDef {
	return paramDef{id: id, module: m, name: name, typ: ValueInt, lin: Range{lo, hi}, def: def}
}

func boolP(id uint32, m Module, name string, def bool) paramDef {
	var d float32
	if def {
		d = 1
	}
	return paramDef{id: id, module: m, name: name, typ: ValueBool, lin: unitRange, def: d}
}

func menuP(id uint32, m Module, name string, items []string, def uint8) paramDef {
	return paramDef{id: id, module: m, name: name, typ: ValueMenu, lin: Range{0, float32(len(items) - 1)}, def: float32(def), menu: items}
}

var globalDefs = [NumGlobalParams]paramDef{
	MasterVolume:   projP(1, ModuleMaster, "Volume", ampProjection, ampOne),
	MasterTimbre:   floatP(2, ModuleMaster, "Timbre", unitRange, 0.5),
	MasterDynamics: floatP(3, ModuleMaster, "Dynamics", unitRange, 0.5),

	Macro1: floatP(10, ModuleMacro, "Macro 1", unitRange, 0),
	Macro2: floatP(11, ModuleMacro, "Macro 2", unitRange, 0),
	Macro3: floatP(12, ModuleMacro, "Macro 3", unitRange, 0),
	Macro4: floatP(13, ModuleMacro, "Macro 4", unitRange, 0),

	DistortionOn:        boolP(20, ModuleDistortion, "On", false),
	DistortionAlgorithm: menuP(21, ModuleDistortion, "Type", distortionTypeItems, uint8(DistortionTubeLog)),
	DistortionDrive:     floatP(22, ModuleDistortion, "Drive", unitRange, 0.5),

	BitCrushOn:      boolP(30, ModuleBitCrush, "On", false),
	BitCrushBits:    intP(31, ModuleBitCrush, "Bits", 1, 32, 8),
	BitCrushBitRate: projP(32, ModuleBitCrush, "Sample Rate", Projection{Range: Range{256, 44100}, Exponent: 3}, 0.6),
	BitCrushWet:     projP(33, ModuleBitCrush, "Wet", ampProjection, ampOne),
	BitCrushDry:     projP(34, ModuleBitCrush, "Dry", ampProjection, ampOne),

	CompressorOn:        boolP(40, ModuleCompressor, "On", false),
	CompressorThreshold: projP(41, ModuleCompressor, "Threshold", Projection{Range: Range{0.001, 1}, Exponent: 3}, 0.7),
	CompressorRatio:     floatP(42, ModuleCompressor, "Ratio", Range{1, 20}, 2),
	CompressorGain:      floatP(43, ModuleCompressor, "Gain", Range{-20, 20}, 0),
	CompressorAutoGain:  boolP(44, ModuleCompressor, "Auto Gain", true),

	FilterOn:        boolP(50, ModuleFilterEffect, "On", false),
	FilterType:      menuP(51, ModuleFilterEffect, "Type", filterEffectTypeItems, uint8(FilterEffectLowPass)),
	FilterCutoff:    projP(52, ModuleFilterEffect, "Cutoff", hzAudioProj, 0.5),
	FilterResonance: floatP(53, ModuleFilterEffect, "Resonance", unitRange, 0.5),
	FilterGain:      floatP(54, ModuleFilterEffect, "Gain", dbRange, 0),

	StereoWidenOn:    boolP(60, ModuleStereoWiden, "On", false),
	StereoWidenWidth: floatP(61, ModuleStereoWiden, "Width", bipolarRange, 0),

	ChorusOn:       boolP(70, ModuleChorus, "On", false),
	ChorusRate:     projP(71, ModuleChorus, "Rate", Projection{Range: Range{0.001, 10}, Exponent: 3}, 0.3),
	ChorusHighpass: projP(72, ModuleChorus, "High-pass", hzAudioProj, 0.2),
	ChorusDepth:    floatP(73, ModuleChorus, "Depth", unitRange, 0.3),
	ChorusWet:      projP(74, ModuleChorus, "Wet", ampProjection, ampOne),
	ChorusDry:      projP(75, ModuleChorus, "Dry", ampProjection, ampOne),

	ReverbOn:                boolP(80, ModuleReverb, "On", false),
	ReverbMix:               floatP(81, ModuleReverb, "Mix", unitRange, 0.3),
	ReverbSize:              floatP(82, ModuleReverb, "Size", unitRange, 0.5),
	ReverbDecayTimeMs:       projP(83, ModuleReverb, "Decay Time", Projection{Range: Range{0, 20000}, Exponent: 2}, 0.4),
	ReverbDelay:             projP(84, ModuleReverb, "Pre-delay", Projection{Range: Range{0, 1000}, Exponent: 2}, 0),
	ReverbChorusFrequency:   projP(85, ModuleReverb, "Chorus Frequency", hzLfoProj, 0.2),
	ReverbChorusAmount:      floatP(86, ModuleReverb, "Chorus Amount", unitRange, 0),
	ReverbPreLowPassCutoff:  floatP(87, ModuleReverb, "Low-pass", semitoneCutRange, semitoneCutRange.Max),
	ReverbPreHighPassCutoff: floatP(88, ModuleReverb, "High-pass", semitoneCutRange, semitoneCutRange.Min),
	ReverbLowShelfCutoff:    floatP(89, ModuleReverb, "Low Shelf Cutoff", semitoneCutRange, 40),
	ReverbLowShelfGain:      floatP(90, ModuleReverb, "Low Shelf Gain", dbRange, 0),
	ReverbHighShelfCutoff:   floatP(91, ModuleReverb, "High Shelf Cutoff", semitoneCutRange, 110),
	ReverbHighShelfGain:     floatP(92, ModuleReverb, "High Shelf Gain", dbRange, 0),

	DelayOn:                    boolP(100, ModuleDelay, "On", false),
	DelayTimeSyncSwitch:        boolP(101, ModuleDelay, "Sync", true),
	DelayTimeLMs:               projP(102, ModuleDelay, "Time L", Projection{Range: Range{1, 4000}, Exponent: 2}, 0.3),
	DelayTimeRMs:               projP(103, ModuleDelay, "Time R", Projection{Range: Range{1, 4000}, Exponent: 2}, 0.3),
	DelayTimeSyncedL:           menuP(104, ModuleDelay, "Synced Time L", syncedTimeItems, uint8(Synced1_8)),
	DelayTimeSyncedR:           menuP(105, ModuleDelay, "Synced Time R", syncedTimeItems, uint8(Synced1_8)),
	DelayFeedback:              floatP(106, ModuleDelay, "Feedback", unitRange, 0.5),
	DelayStereoMode:            menuP(107, ModuleDelay, "Mode", delayModeItems, uint8(DelayStereo)),
	DelayFilterCutoffSemitones: floatP(108, ModuleDelay, "Filter Cutoff", semitoneCutRange, semitoneCutRange.Max/2),
	DelayFilterSpread:          floatP(109, ModuleDelay, "Filter Spread", unitRange, 0.5),
	DelayMix:                   floatP(110, ModuleDelay, "Mix", unitRange, 0.3),

	PhaserOn:              boolP(120, ModulePhaser, "On", false),
	PhaserFeedback:        floatP(121, ModulePhaser, "Feedback", unitRange, 0.3),
	PhaserModFreqHz:       projP(122, ModulePhaser, "Rate", hzLfoProj, 0.3),
	PhaserCenterSemitones: floatP(123, ModulePhaser, "Center", semitoneCutRange, 60),
	PhaserShape:           floatP(124, ModulePhaser, "Shape", unitRange, 0.5),
	PhaserModDepth:        floatP(125, ModulePhaser, "Depth", Range{0, 48}, 12),
	PhaserStereoAmount:    floatP(126, ModulePhaser, "Stereo Amount", unitRange, 0),
	PhaserMix:             floatP(127, ModulePhaser, "Mix", unitRange, 0.5),

	ConvolutionReverbOn:       boolP(130, ModuleConvolutionReverb, "On", false),
	ConvolutionReverbHighpass: projP(131, ModuleConvolutionReverb, "High-pass", hzAudioProj, 0.1),
	ConvolutionReverbWet:      projP(132, ModuleConvolutionReverb, "Wet", ampProjection, ampOne),
	ConvolutionReverbDry:      projP(133, ModuleConvolutionReverb, "Dry", ampProjection, ampOne),
}

var layerDefs = [NumLayerParams]paramDef{
	LayerVolume:       projP(1, ModuleVolume, "Volume", ampProjection, ampOne),
	LayerMute:         boolP(2, ModuleVolume, "Mute", false),
	LayerSolo:         boolP(3, ModuleVolume, "Solo", false),
	LayerPan:          floatP(4, ModuleVolume, "Pan", bipolarRange, 0),
	LayerTuneCents:    floatP(5, ModuleVolume, "Detune", Range{-100, 100}, 0),
	LayerTuneSemitone: intP(6, ModuleVolume, "Pitch", -36, 36, 0),

	LayerLoopMode:      menuP(10, ModuleLoop, "Loop Mode", loopModeItems, uint8(LoopInstrumentDefault)),
	LayerLoopStart:     floatP(11, ModuleLoop, "Loop Start", unitRange, 0),
	LayerLoopEnd:       floatP(12, ModuleLoop, "Loop End", unitRange, 1),
	LayerLoopCrossfade: floatP(13, ModuleLoop, "Loop Crossfade", unitRange, 0),
	LayerSampleOffset:  floatP(14, ModuleLoop, "Sample Offset", unitRange, 0),
	LayerReverse:       boolP(15, ModuleLoop, "Reverse", false),

	LayerVolEnvOn:      boolP(20, ModuleVolumeEnvelope, "On", true),
	LayerVolumeAttack:  projP(21, ModuleVolumeEnvelope, "Attack", msProjection, 0),
	LayerVolumeDecay:   projP(22, ModuleVolumeEnvelope, "Decay", msProjection, 0.5),
	LayerVolumeSustain: floatP(23, ModuleVolumeEnvelope, "Sustain", unitRange, 1),
	LayerVolumeRelease: projP(24, ModuleVolumeEnvelope, "Release", msProjection, 0.3),

	LayerFilterOn:        boolP(30, ModuleFilter, "On", false),
	LayerFilterCutoff:    projP(31, ModuleFilter, "Cutoff", hzAudioProj, 0.6),
	LayerFilterResonance: floatP(32, ModuleFilter, "Resonance", unitRange, 0),
	LayerFilterType:      menuP(33, ModuleFilter, "Type", layerFilterTypeItems, uint8(LayerFilterLowPass)),
	LayerFilterEnvAmount: floatP(34, ModuleFilter, "Envelope Amount", bipolarRange, 0),
	LayerFilterAttack:    projP(35, ModuleFilter, "Attack", msProjection, 0),
	LayerFilterDecay:     projP(36, ModuleFilter, "Decay", msProjection, 0.5),
	LayerFilterSustain:   floatP(37, ModuleFilter, "Sustain", unitRange, 1),
	LayerFilterRelease:   projP(38, ModuleFilter, "Release", msProjection, 0.3),

	LayerLfoOn:              boolP(40, ModuleLfo, "On", false),
	LayerLfoShape:           menuP(41, ModuleLfo, "Shape", lfoShapeItems, uint8(LfoSine)),
	LayerLfoRestart:         menuP(42, ModuleLfo, "Restart", lfoRestartItems, uint8(LfoRetrigger)),
	LayerLfoAmount:          floatP(43, ModuleLfo, "Amount", bipolarRange, 0),
	LayerLfoDestination:     menuP(44, ModuleLfo, "Destination", lfoDestinationItems, uint8(LfoDestVolume)),
	LayerLfoRateTempoSynced: menuP(45, ModuleLfo, "Synced Rate", syncedTimeItems, uint8(Synced1_4)),
	LayerLfoRateHz:          projP(46, ModuleLfo, "Rate", hzLfoProj, 0.3),
	LayerLfoSyncSwitch:      boolP(47, ModuleLfo, "Sync", true),

	LayerEqOn:         boolP(50, ModuleEq, "On", false),
	LayerEqFreq1:      projP(51, ModuleEq, "Frequency 1", hzAudioProj, 0.3),
	LayerEqResonance1: floatP(52, ModuleEq, "Resonance 1", unitRange, 0.5),
	LayerEqGain1:      floatP(53, ModuleEq, "Gain 1", Range{-30, 30}, 0),
	LayerEqType1:      menuP(54, ModuleEq, "Type 1", eqTypeItems, uint8(EqPeak)),
	LayerEqFreq2:      projP(55, ModuleEq, "Frequency 2", hzAudioProj, 0.7),
	LayerEqResonance2: floatP(56, ModuleEq, "Resonance 2", unitRange, 0.5),
	LayerEqGain2:      floatP(57, ModuleEq, "Gain 2", Range{-30, 30}, 0),
	LayerEqType2:      menuP(58, ModuleEq, "Type 2", eqTypeItems, uint8(EqPeak)),

	LayerKeytrack:      boolP(60, ModuleMidi, "Keytrack", true),
	LayerMonophonic:    boolP(61, ModuleMidi, "Monophonic", false),
	LayerCC64Retrigger: boolP(62, ModuleMidi, "CC64 Retrigger", true),
	LayerMidiTranspose: intP(63, ModuleMidi, "Transpose", -36, 36, 0),

	LayerKeyRangeLow:      intP(70, ModuleKeyRange, "Low", midiNoteRange.Min, midiNoteRange.Max, 0),
	LayerKeyRangeHigh:     intP(71, ModuleKeyRange, "High", midiNoteRange.Min, midiNoteRange.Max, 127),
	LayerKeyRangeLowFade:  intP(72, ModuleKeyRange, "Low Fade", midiNoteRange.Min, midiNoteRange.Max, 0),
	LayerKeyRangeHighFade: intP(73, ModuleKeyRange, "High Fade", midiNoteRange.Min, midiNoteRange.Max, 0),
	LayerPitchBendRange:   intP(74, ModuleMidi, "Pitch Bend Range", 0, 48, 2),
}

var (
	descriptors [Count]Descriptor
	byID        = make(map[uint32]Index, Count)
)

func init() {
	set := func(i Index, s paramDef, path []Module, namePrefix string, id uint32) {
		if _, dup := byID[id]; dup {
			panic(fmt.Sprintf("duplicate parameter id %d", id))
		}
		descriptors[i] = Descriptor{
			Index:         i,
			ID:            id,
			Name:          namePrefix + s.name,
			ModulePath:    path,
			LinearRange:   s.lin,
			DefaultLinear: s.def,
			ValueType:     s.typ,
			Projection:    s.proj,
			MenuItems:     s.menu,
		}
		byID[id] = i
	}

	for i, s := range globalDefs {
		var path []Module
		switch s.module {
		case ModuleMaster, ModuleMacro:
			path = []Module{s.module}
		default:
			path = []Module{ModuleEffect, s.module}
		}
		prefix := path[len(path)-1].String() + " "
		if s.module == ModuleMacro {
			prefix = ""
		}
		set(Index(i), s, path, prefix, s.id)
	}
	for layer := 0; layer < core.NumLayers; layer++ {
		layerModule := ModuleLayer1 + Module(layer)
		for p, s := range layerDefs {
			path := []Module{layerModule, s.module}
			prefix := layerModule.String() + " " + s.module.String() + " "
			set(LayerIndex(layer, LayerParam(p)), s, path, prefix, uint32(layerIDBase*(layer+1))+s.id)
		}
	}
}

// Get returns the descriptor of a parameter.
func Get(i Index) *Descriptor {
	return &descriptors[i]
}

// All returns every descriptor, in Index order. The slice must not be
// modified.
func All() []Descriptor {
	return descriptors[:]
}

// ByID looks up the Index of a stable parameter id.
func ByID(id uint32) (Index, bool) {
	i, ok := byID[id]
	return i, ok
}

// Defaults returns the default linear value of every parameter.
func Defaults() (out [Count]float32) {
	for i := range descriptors {
		out[i] = descriptors[i].DefaultLinear
	}
	return
}
