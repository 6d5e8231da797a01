// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package legacy

import (
	"fmt"
	"math"
	"strings"

	log "github.com/golang/glog"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/params"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

/*

A Mirage preset looks like

	{
	  "master":   {"version": 20003, "last loaded preset": {"name": "...", "changed": false}},
	  "library":  {"name": "Wraith"},
	  "layers":   [{"path": "sampler/Pads/Ghost"}, {"path": "", "special_type": "sine"}],
	  "fx_order": ["verb", "dist"],
	  "params":   [{"name": "L1_Volume", "value": -6.0}, {"name": "DistType", "value": "Tube Log"}]
	}

Decode turns it into a snapshot at state.VersionInitial: current parameters
hold their converted values, removed ones are stashed, and effects that were
split across several Mirage parameters are rebuilt. The version adapter does
the rest.

*/

// Mirage versions are encoded as major*10000 + minor*100 + patch.
const (
	// Before this, layers with key tracking off ignored their tuning, and
	// ping-pong loops with the offset past twice the loop end were silent.
	VersionFixedKeytrackAndPingPongOffset = 10200
	// Before this, ping-pong loops had no crossfade.
	VersionFixedPingPongCrossfade = 20003
)

// SnapshotVersion is the schema version of snapshots returned by Decode.
const SnapshotVersion = state.VersionInitial

// Info is what a Mirage preset says about itself besides its state.
type Info struct {
	MirageVersion    int
	LibraryName      string
	LastLoadedPreset string
}

// MirageVersionString formats an encoded Mirage version.
func MirageVersionString(v int) string {
	return fmt.Sprintf("%d.%d.%d", v/10000, v/100%100, v%100)
}

type layerEntry struct {
	path        string
	specialType string
}

type paramValue struct {
	name     string
	hasName  bool
	kind     EventKind
	str      string
	num      float64
	hasValue bool
}

type decoder struct {
	s    *state.Snapshot
	info Info

	raw     [params.Count]float64
	present [params.Count]bool
	irName  string

	sawFxOrder bool
	fxOrder    []state.EffectType
	layers     []layerEntry

	param paramValue
	layer layerEntry
}

// Decode parses a Mirage preset.
func Decode(data []byte) (*state.Snapshot, Info, error) {
	d := &decoder{s: state.Default()}
	if err := ParseEvents(data, d.handle); err != nil {
		return nil, d.info, err
	}
	if err := d.finish(); err != nil {
		return nil, d.info, err
	}
	return d.s, d.info, nil
}

func programmer(format string, args ...interface{}) error {
	err := fmt.Errorf("%w: %s", core.ErrProgrammer.Error(), fmt.Sprintf(format, args...))
	log.Errorf("mirage preset: %s", err)
	return err
}

func (d *decoder) handle(ev *Event) error {
	switch {
	case ev.In() && ev.Key == "fx_order" && ev.Kind == HandlingStarted:
		d.sawFxOrder = true

	case ev.In("fx_order") && ev.Kind == EventString:
		if e, ok := legacyEffectIDs[ev.String]; ok {
			d.fxOrder = append(d.fxOrder, e)
		} else {
			log.V(1).Infof("ignoring unknown effect id %q", ev.String)
		}

	case ev.In("params") && ev.Kind == HandlingStarted:
		d.param = paramValue{}

	case ev.In("params") && ev.Kind == HandlingEnded:
		return d.commitParam()

	case ev.In("params", ""):
		switch ev.Key {
		case "name":
			if ev.Kind != EventString {
				return fmt.Errorf("%w: parameter name is not a string", core.ErrInvalidFileFormat.Error())
			}
			d.param.name, d.param.hasName = ev.String, true
		case "value":
			d.param.kind = ev.Kind
			d.param.str = ev.String
			d.param.num = ev.Double
			if ev.Kind == EventBool && ev.Bool {
				d.param.num = 1
			}
			d.param.hasValue = true
		}

	case ev.In("master") && ev.Key == "version" && (ev.Kind == EventInt || ev.Kind == EventDouble):
		d.info.MirageVersion = int(ev.Double)

	case ev.In("master", "last loaded preset") && ev.Key == "name" && ev.Kind == EventString:
		d.info.LastLoadedPreset = ev.String

	case ev.In("library") && ev.Key == "name" && ev.Kind == EventString:
		d.info.LibraryName = ev.String

	case ev.In("layers") && ev.Kind == HandlingStarted:
		d.layer = layerEntry{}

	case ev.In("layers") && ev.Kind == HandlingEnded:
		d.layers = append(d.layers, d.layer)

	case ev.In("layers", "") && ev.Kind == EventString:
		switch ev.Key {
		case "path":
			d.layer.path = ev.String
		case "special_type":
			d.layer.specialType = ev.String
		}
	}
	return nil
}

func (d *decoder) commitParam() error {
	v := d.param
	if !v.hasName || !v.hasValue {
		return fmt.Errorf("%w: parameter without name or value", core.ErrInvalidFileFormat.Error())
	}
	p, ok := ParamFromLegacyID(v.name)
	if !ok {
		return programmer("unknown parameter %q", v.name)
	}

	var num float64
	switch {
	case v.kind == EventString && p.kind == kindMenu:
		m, ok := p.LookupMenuName(v.str)
		if !ok {
			return programmer("unknown menu item %q for %q", v.str, v.name)
		}
		num = float64(m)
	case v.kind == EventString && p.kind == kindString:
		d.irName = v.str
		return nil
	case v.kind == EventString:
		return programmer("string value %q for numeric parameter %q", v.str, v.name)
	case p.kind == kindString:
		return programmer("numeric value for text parameter %q", v.name)
	case v.kind == EventNull:
		log.V(1).Infof("ignoring null value of %q", v.name)
		return nil
	default:
		num = v.num
	}

	if p.StillExists {
		d.raw[p.Index] = num
		d.present[p.Index] = true
	} else {
		d.s.Stash(p.Removed, float32(num))
	}
	return nil
}

// Project rewrites a Mirage value by p.
func Project(p Projection, v float64) float64 {
	switch p {
	case WasPercentNowFraction:
		return v / 100
	case WasDbNowAmp:
		return dbToAmp(v)
	case WasOldBoolNowNewBool:
		if v >= 0.5 {
			return 1
		}
		return 0
	case WasOldIntNowNewInt:
		return math.Round(v)
	}
	return v
}

func dbToAmp(db float64) float64 {
	return math.Pow(10, db/20)
}

func (d *decoder) finish() error {
	s := d.s
	for i := range d.raw {
		if !d.present[i] {
			continue
		}
		idx := params.Index(i)
		s.SetNatural(idx, float32(Project(projectionOf(idx), d.raw[i])))
	}

	if err := d.instruments(); err != nil {
		return err
	}
	d.impulseResponse()
	d.effectOrder()
	reconstructReverb(s)
	reconstructPhaser(s)
	reconstructDelay(s)
	reconstructLoopModes(s)
	reproduceBugs(s, d.info.MirageVersion)
	return nil
}

func projectionOf(i params.Index) Projection {
	return projections[i]
}

func (d *decoder) instruments() error {
	lib := d.info.LibraryName
	noLibrary := lib == "" || lib == "None"
	libID := core.LegacyLibraryRef{Author: core.MirageCompatibilityLibrary.Author, Name: lib}.Provisional()

	for l := range d.s.Instruments {
		d.s.Instruments[l] = core.NoInstrument
		if l >= len(d.layers) || noLibrary {
			continue
		}
		inst, err := instrumentFromLayer(d.layers[l], libID)
		if err != nil {
			return err
		}
		d.s.Instruments[l] = inst
	}
	return nil
}

func instrumentFromLayer(e layerEntry, lib core.LibraryID) (core.InstrumentID, error) {
	if e.path == "" && (e.specialType == "" || e.specialType == "none") {
		return core.NoInstrument, nil
	}
	switch {
	case strings.HasPrefix(e.path, "sampler/Air/Noise - White"):
		return core.Waveform(core.WaveformWhiteNoiseStereo), nil
	case strings.HasPrefix(e.path, "sampler/Mid/Mid - Sine"):
		return core.Waveform(core.WaveformSine), nil
	}
	switch e.specialType {
	case "", "none":
	case "sine":
		return core.Waveform(core.WaveformSine), nil
	case "noise-mono":
		return core.Waveform(core.WaveformWhiteNoiseMono), nil
	case "noise-stereo":
		return core.Waveform(core.WaveformWhiteNoiseStereo), nil
	default:
		return core.NoInstrument, programmer("unknown layer special type %q", e.specialType)
	}
	name, ok := renamedInstrumentPaths[e.path]
	if !ok {
		name = e.path[strings.LastIndexByte(e.path, '/')+1:]
	}
	if name == "" {
		return core.NoInstrument, nil
	}
	return core.Sampler(lib, name), nil
}

func (d *decoder) impulseResponse() {
	if d.irName == "" || d.irName == "None" {
		return
	}
	d.s.IR = &core.IRID{Library: core.MirageCompatibilityLibrary.Provisional(), Name: d.irName}
}

func (d *decoder) effectOrder() {
	var seen [state.NumEffectTypes]bool
	var order []state.EffectType
	add := func(e state.EffectType) {
		if !seen[e] {
			seen[e] = true
			order = append(order, e)
		}
	}
	if d.sawFxOrder {
		for _, e := range d.fxOrder {
			add(e)
		}
	}
	for _, e := range historicalFxOrder {
		add(e)
	}
	for e := state.EffectType(0); e < state.NumEffectTypes; e++ {
		add(e)
	}
	copy(d.s.FxOrder[:], order)
}
