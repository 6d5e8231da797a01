// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/preset"
	"github.com/westerndigitalcorporation/floe/internal/presetcache"
	"github.com/westerndigitalcorporation/floe/internal/state"
	"github.com/westerndigitalcorporation/floe/pkg/testutil"
)

const mirage = `{"master": {"version": 20003}, "library": {"name": "Wraith"},
	"layers": [{"path": "sampler/Pads/Ghost"}], "params": []}`

func runCli(t *testing.T, args ...string) *presetCli {
	p := newPresetCli()
	if err := p.run(append([]string{"floepresets"}, args...)); err != nil {
		t.Fatalf("%v: %s", args, err)
	}
	if p.exitCode != 0 {
		t.Fatalf("%v failed", args)
	}
	return p
}

func TestWriteCommands(t *testing.T) {
	dir := testutil.NewTempDir(t, "cli")
	def := filepath.Join(dir, "Default"+core.PresetFileExtension)
	rnd := filepath.Join(dir, "Random"+core.PresetFileExtension)
	runCli(t, "default", def)
	runCli(t, "randomise", "--seed", "7", rnd)

	s, err := preset.LoadPresetFile(def, false)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Equal(state.Default()) {
		t.Errorf("default preset isn't the default state")
	}
	r, err := preset.LoadPresetFile(rnd, false)
	if err != nil {
		t.Fatal(err)
	}
	if r.Equal(s) {
		t.Errorf("randomised preset equals the default")
	}
	if err := r.Validate(); err != nil {
		t.Errorf("randomised preset invalid: %s", err)
	}

	var buf bytes.Buffer
	printSnapshot(&buf, r, core.FileFormatFloe, false)
	if !strings.Contains(buf.String(), "format:      floe") {
		t.Errorf("info output:\n%s", buf.String())
	}
	runCli(t, "info", "--all", rnd)
}

func TestConvert(t *testing.T) {
	dir := testutil.NewTempDir(t, "cli")
	in := testutil.WriteFile(t, dir, "Ghosts.mirage-preset", []byte(mirage))
	out := filepath.Join(dir, "Ghosts"+core.PresetFileExtension)
	runCli(t, "convert", in, out)

	s, err := preset.LoadPresetFile(out, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.UsedLibraries(); len(got) != 1 || got[0] != "com.frozenplain.wraith" {
		t.Errorf("converted libraries = %v", got)
	}

	p := newPresetCli()
	p.run([]string{"floepresets", "convert", in})
	if p.exitCode == 0 {
		t.Errorf("convert with one argument should fail")
	}
}

func TestScanAndCache(t *testing.T) {
	dir := testutil.NewTempDir(t, "cli")
	testutil.WriteFile(t, dir, "old/Ghosts.mirage-preset", []byte(mirage))
	runCli(t, "default", filepath.Join(dir, "Init"+core.PresetFileExtension))

	cache := filepath.Join(testutil.NewTempDir(t, "cache"), "presets.db")
	runCli(t, "--cache", cache, "scan", "--name", "ghost", "--format", "mirage", dir)

	export := filepath.Join(dir, "cache.export")
	runCli(t, "--cache", cache, "export-cache", export)
	imported := filepath.Join(testutil.NewTempDir(t, "cache"), "copy.db")
	runCli(t, "--cache", imported, "import-cache", export)

	c, err := presetcache.Open(imported, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Len() != 2 {
		t.Errorf("imported cache has %d records, want 2", c.Len())
	}

	p := newPresetCli()
	p.run([]string{"floepresets", "scan", "--format", "wav", dir})
	if p.exitCode == 0 {
		t.Errorf("unknown format accepted")
	}
}

func TestBench(t *testing.T) {
	dir := testutil.NewTempDir(t, "cli")
	runCli(t, "default", filepath.Join(dir, "a"+core.PresetFileExtension))
	testutil.WriteFile(t, dir, "sub/b.mirage-preset", []byte(mirage))
	runCli(t, "bench", "-n", "3", "--abbreviated", dir)
}
