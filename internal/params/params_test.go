// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package params

import (
	"math"
	"testing"
)

func TestTableShape(t *testing.T) {
	if Count != 225 {
		t.Fatalf("Count = %d", Count)
	}
	if len(All()) != Count {
		t.Fatalf("%d descriptors", len(All()))
	}
	for i, d := range All() {
		if d.Index != Index(i) {
			t.Errorf("descriptor %d has index %d", i, d.Index)
		}
		if d.Name == "" || len(d.ModulePath) == 0 {
			t.Errorf("descriptor %d (%s) is incomplete", i, d.Name)
		}
		if !d.LinearRange.Contains(d.DefaultLinear) {
			t.Errorf("%s: default %f outside %v", d.Name, d.DefaultLinear, d.LinearRange)
		}
		if d.Quantise(d.DefaultLinear) != d.DefaultLinear {
			t.Errorf("%s: default %f not quantised", d.Name, d.DefaultLinear)
		}
		if got, ok := ByID(d.ID); !ok || got != d.Index {
			t.Errorf("%s: ByID(%d) = %d, %v", d.Name, d.ID, got, ok)
		}
		if _, ok := RemovedByID(d.ID); ok {
			t.Errorf("%s: id %d is also a removed id", d.Name, d.ID)
		}
		if d.ValueType == ValueMenu && int(d.LinearRange.Max)+1 != len(d.MenuItems) {
			t.Errorf("%s: range %v for %d items", d.Name, d.LinearRange, len(d.MenuItems))
		}
	}
}

func TestLayerIndex(t *testing.T) {
	for layer := 0; layer < 3; layer++ {
		for p := LayerParam(0); p < NumLayerParams; p++ {
			i := LayerIndex(layer, p)
			l, gotP, ok := LayerOf(i)
			if !ok || l != layer || gotP != p {
				t.Fatalf("LayerOf(LayerIndex(%d, %d)) = %d, %d, %v", layer, p, l, gotP, ok)
			}
			if Get(i).ModulePath[0] != ModuleLayer1+Module(layer) {
				t.Errorf("%s is not in layer %d", Get(i).Name, layer)
			}
		}
	}
	if _, _, ok := LayerOf(MasterVolume); ok {
		t.Errorf("MasterVolume reported as a layer param")
	}
	if LayerIndex(2, NumLayerParams-1) != Index(Count-1) {
		t.Errorf("last layer param is not the last index")
	}
}

func TestMacros(t *testing.T) {
	for m := 0; m < 4; m++ {
		if !Get(MacroIndex(m)).IsMacro() {
			t.Errorf("macro %d not in macro module", m)
		}
	}
	if Get(MasterVolume).IsMacro() {
		t.Errorf("MasterVolume is a macro")
	}
}

func TestProjection(t *testing.T) {
	vol := Get(MasterVolume)
	if v := vol.Project(vol.DefaultLinear); math.Abs(float64(v)-1) > 1e-5 {
		t.Errorf("default volume projects to %f", v)
	}
	if v := vol.Project(1); v != 2 {
		t.Errorf("max volume projects to %f", v)
	}

	for _, natural := range []float32{0, 0.25, 1, 1.5, 2} {
		lin, ok := vol.LineariseValue(natural, false)
		if !ok {
			t.Fatalf("LineariseValue(%f) failed", natural)
		}
		if back := vol.Project(lin); math.Abs(float64(back-natural)) > 1e-4 {
			t.Errorf("%f -> %f -> %f", natural, lin, back)
		}
	}

	if _, ok := vol.LineariseValue(3, false); ok {
		t.Errorf("out of range value accepted without clamp")
	}
	if lin, ok := vol.LineariseValue(3, true); !ok || lin != 1 {
		t.Errorf("clamped value = %f, %v", lin, ok)
	}
	if _, ok := vol.LineariseValue(float32(math.NaN()), true); ok {
		t.Errorf("NaN accepted")
	}
}

func TestQuantise(t *testing.T) {
	semi := Get(LayerIndex(0, LayerTuneSemitone))
	if lin, ok := semi.LineariseValue(6.6, false); !ok || lin != 7 {
		t.Errorf("int param: %f, %v", lin, ok)
	}
	on := Get(ReverbOn)
	if lin, _ := on.LineariseValue(0.4, true); lin != 0 {
		t.Errorf("bool param: %f", lin)
	}
	if v := on.Sanitise(float32(math.NaN())); v != on.DefaultLinear {
		t.Errorf("NaN sanitised to %f", v)
	}
	if v := Get(ReverbMix).Sanitise(1.5); v != 1 {
		t.Errorf("1.5 sanitised to %f", v)
	}
}

func TestMenus(t *testing.T) {
	d := Get(DelayStereoMode)
	if s := d.Format(float32(DelayPingPong)); s != "Ping-pong" {
		t.Errorf("got %q", s)
	}
	if s := d.MenuItem(99); s != "" {
		t.Errorf("got %q", s)
	}
	if st, ok := SyncedTimeFromString("1/8"); !ok || st != Synced1_8 {
		t.Errorf("1/8 = %d, %v", st, ok)
	}
	if st, ok := SyncedTimeFromString("1/4"); !ok || st != Synced1_4 {
		t.Errorf("1/4 = %d, %v", st, ok)
	}
	if _, ok := SyncedTimeFromString("3/4"); ok {
		t.Errorf("3/4 found")
	}
	if len(syncedTimeItems) != int(NumSynced) {
		t.Errorf("%d synced items", len(syncedTimeItems))
	}
	if len(velocityMappingItems) != int(NumVelocityMappingModes) {
		t.Errorf("%d velocity mapping items", len(velocityMappingItems))
	}
	if !LoopBuiltInPingPong.IsPingPong() || LoopStandard.IsPingPong() {
		t.Errorf("IsPingPong wrong")
	}

	// The layer filter's type parameter and its menu enum are distinct names.
	filter := Get(LayerIndex(1, LayerFilterType))
	if len(filter.MenuItems) != int(NumLayerFilterTypes) {
		t.Errorf("%d filter type items", len(filter.MenuItems))
	}
	var mode LayerFilterMode = LayerFilterNotch
	if s := filter.Format(float32(mode)); s != layerFilterTypeItems[LayerFilterNotch] {
		t.Errorf("notch formats as %q", s)
	}
	if filter.DefaultLinear != float32(LayerFilterLowPass) {
		t.Errorf("default filter type %f", filter.DefaultLinear)
	}
}

func TestRemoved(t *testing.T) {
	for r := Removed(0); r < NumRemoved; r++ {
		if r.String() == "" {
			t.Errorf("removed %d has no name", r)
		}
	}
	for l := 0; l < 3; l++ {
		id, ok := RemovedID(RemovedVelocityMapping(l))
		if !ok {
			t.Fatalf("no id for velocity mapping %d", l)
		}
		if r, _ := RemovedByID(id); r != RemovedVelocityMapping(l) {
			t.Errorf("round trip of %d gave %s", id, r)
		}
	}
	if _, ok := RemovedID(RemovedReverbDryDb); ok {
		t.Errorf("Mirage only parameter has a binary id")
	}
}
