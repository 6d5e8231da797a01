// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetserver

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/westerndigitalcorporation/floe/internal/codec"
	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/notify"
	"github.com/westerndigitalcorporation/floe/internal/presetcache"
	"github.com/westerndigitalcorporation/floe/internal/state"
	"github.com/westerndigitalcorporation/floe/pkg/arena"
	"github.com/westerndigitalcorporation/floe/pkg/testutil"
)

const waitTimeout = 5 * time.Second

func presetBytes(t *testing.T, author string, tags ...string) []byte {
	s := state.Default()
	s.Metadata.Author = author
	s.Metadata.Tags = tags
	data, err := codec.Encode(s)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	return data
}

func testConfig(root string) Config {
	cfg := DefaultConfig
	cfg.AlwaysScannedFolder = root
	cfg.PollInterval = 20 * time.Millisecond
	cfg.ErrorRetryInterval = 100 * time.Millisecond
	return cfg
}

func newTestServer(t *testing.T, cfg Config, errs ErrorReporter) *Server {
	s, err := New(cfg, errs)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	t.Cleanup(s.Shutdown)
	return s
}

func waitForStats(t *testing.T, s *Server, what string, cond func(Stats) bool) {
	t.Helper()
	if !testutil.WaitFor(waitTimeout, func() bool { return cond(s.Stats()) }) {
		t.Fatalf("timed out waiting for %s; stats %+v", what, s.Stats())
	}
}

func presetNames(snap *PresetsSnapshot) (names []string) {
	for _, f := range snap.Folders {
		for _, p := range f.Presets {
			names = append(names, p.Name)
		}
	}
	return names
}

func TestScanAndReclaim(t *testing.T) {
	t.Run("fsnotify", func(t *testing.T) { testScanAndReclaim(t, true) })
	t.Run("stat", func(t *testing.T) { testScanAndReclaim(t, false) })
}

func testScanAndReclaim(t *testing.T, useFSNotify bool) {
	dir := testutil.NewTempDir(t, "presets")
	testutil.WriteFile(t, dir, "b.floe-preset", presetBytes(t, "Sam", "pad"))
	testutil.WriteFile(t, dir, "a.floe-preset", presetBytes(t, "Ana", "bass"))
	testutil.WriteFile(t, dir, "notes.txt", []byte("not a preset"))

	cfg := testConfig(dir)
	cfg.UseFSNotify = useFSNotify
	s := newTestServer(t, cfg, nil)
	s.StartScanningIfNeeded()
	waitForStats(t, s, "first scan", func(st Stats) bool { return st.Presets == 2 })

	a := arena.New(0)
	held := s.BeginReadFolders(a)
	if got := presetNames(held); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("presets = %v", got)
	}
	if !reflect.DeepEqual(held.Tags, []string{"bass", "pad"}) || !reflect.DeepEqual(held.Authors, []string{"Ana", "Sam"}) {
		t.Errorf("tags %v authors %v", held.Tags, held.Authors)
	}
	if a.Used() == 0 {
		t.Errorf("tags weren't copied into the reader's arena")
	}
	heldFolder := held.Folders[0]

	if err := os.Remove(filepath.Join(dir, "b.floe-preset")); err != nil {
		t.Fatal(err)
	}
	waitForStats(t, s, "rescan", func(st Stats) bool {
		return st.Presets == 1 && st.PublishedVersion > held.Version
	})

	// The removed folder must outlive the snapshot that can still see it.
	time.Sleep(5 * cfg.PollInterval)
	if st := s.Stats(); st.PendingReclaim == 0 {
		t.Fatalf("folder reclaimed while a reader holds it")
	}
	if got := presetNames(held); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("held snapshot changed: %v", got)
	}
	s.EndReadFolders()

	fresh := s.BeginReadFolders(nil)
	if got := presetNames(fresh); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("fresh snapshot = %v", got)
	}
	if !reflect.DeepEqual(fresh.Tags, []string{"bass"}) {
		t.Errorf("fresh tags = %v", fresh.Tags)
	}
	s.EndReadFolders()

	waitForStats(t, s, "reclaim", func(st Stats) bool { return st.PendingReclaim == 0 })
	if heldFolder.Presets != nil {
		t.Errorf("removed folder wasn't reclaimed")
	}
}

// waitForPresets waits until a fresh snapshot holds exactly the named
// presets, in any order.
func waitForPresets(t *testing.T, s *Server, want ...string) {
	t.Helper()
	sort.Strings(want)
	var got []string
	ok := testutil.WaitFor(waitTimeout, func() bool {
		snap := s.BeginReadFolders(nil)
		got = presetNames(snap)
		s.EndReadFolders()
		sort.Strings(got)
		return reflect.DeepEqual(got, want)
	})
	if !ok {
		t.Fatalf("presets = %v, want %v", got, want)
	}
}

func TestSymlinkedRootsIndexedOnce(t *testing.T) {
	t.Run("fsnotify", func(t *testing.T) { testSymlinkedRoots(t, true) })
	t.Run("stat", func(t *testing.T) { testSymlinkedRoots(t, false) })
}

func testSymlinkedRoots(t *testing.T, useFSNotify bool) {
	base := testutil.NewTempDir(t, "roots")
	realDir := filepath.Join(base, "real")
	testutil.WriteFile(t, realDir, "x.floe-preset", presetBytes(t, "Ana"))
	testutil.WriteFile(t, realDir, "sub/y.floe-preset", presetBytes(t, "Ana"))
	link := filepath.Join(base, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unavailable: %s", err)
	}

	cfg := testConfig(realDir)
	cfg.UseFSNotify = useFSNotify
	s := newTestServer(t, cfg, nil)
	s.SetExtraScanFolders([]string{link})
	s.StartScanningIfNeeded()
	waitForStats(t, s, "both roots", func(st Stats) bool { return st.ScannedRoots == 2 })

	snap := s.BeginReadFolders(nil)
	seen := make(map[string]int)
	for _, name := range presetNames(snap) {
		seen[name]++
	}
	if !reflect.DeepEqual(seen, map[string]int{"x": 1, "y": 1}) {
		t.Errorf("presets seen %v", seen)
	}
	if got := len(snap.Root.Children()); got != 2 {
		t.Errorf("%d root nodes, want 2", got)
	}
	if sub := snap.Root.Child(normalisePath(realDir)).Child("sub"); sub == nil || sub.Folder == nil {
		t.Errorf("sub folder missing from tree")
	}
	s.EndReadFolders()

	// Both roots share the same directories; changes must still reach the
	// root that owns the presets.
	if err := os.Remove(filepath.Join(realDir, "x.floe-preset")); err != nil {
		t.Fatal(err)
	}
	waitForPresets(t, s, "y")

	testutil.WriteFile(t, realDir, "z.floe-preset", presetBytes(t, "Ana"))
	waitForPresets(t, s, "y", "z")

	testutil.WriteFile(t, realDir, "sub/w.floe-preset", presetBytes(t, "Ana"))
	waitForPresets(t, s, "w", "y", "z")
}

func TestScanningWaitsForReader(t *testing.T) {
	dir := testutil.NewTempDir(t, "presets")
	testutil.WriteFile(t, dir, "a.floe-preset", presetBytes(t, "Ana"))
	s := newTestServer(t, testConfig(dir), nil)

	time.Sleep(10 * s.cfg.PollInterval)
	if st := s.Stats(); st.Presets != 0 || st.ScannedRoots != 0 {
		t.Fatalf("scanned before anyone asked: %+v", st)
	}

	// Reading latches scanning on.
	s.BeginReadFolders(nil)
	s.EndReadFolders()
	waitForStats(t, s, "scan", func(st Stats) bool { return st.Presets == 1 })
}

func TestExtraScanFolderErrors(t *testing.T) {
	base := testutil.NewTempDir(t, "extra")
	missing := filepath.Join(base, "later")
	notes := &notify.Notifications{}

	s := newTestServer(t, testConfig(filepath.Join(base, "always")), notes)
	if err := os.Mkdir(filepath.Join(base, "always"), 0755); err != nil {
		t.Fatal(err)
	}
	s.SetExtraScanFolders([]string{missing})
	s.StartScanningIfNeeded()

	if !testutil.WaitFor(waitTimeout, func() bool { return notes.Len() == 1 }) {
		t.Fatalf("missing folder not reported")
	}
	n := notes.Snapshot()[0]
	if n.Category != ErrorCategory || n.ID != normalisePath(missing) || n.Kind != core.ErrFileNotFound {
		t.Errorf("notification = %+v", n)
	}

	testutil.WriteFile(t, missing, "p.floe-preset", presetBytes(t, "Sam"))
	if !testutil.WaitFor(waitTimeout, func() bool { return notes.Len() == 0 && s.Stats().Presets == 1 }) {
		t.Fatalf("folder not picked up after it appeared: %v", notes.Snapshot())
	}

	s.SetExtraScanFolders(nil)
	waitForStats(t, s, "root removal", func(st Stats) bool { return st.Roots == 1 && st.Presets == 0 })
}

func TestModifiedPresetRescanned(t *testing.T) {
	dir := testutil.NewTempDir(t, "presets")
	testutil.WriteFile(t, dir, "a.floe-preset", presetBytes(t, "Ana", "old"))
	cfg := testConfig(dir)
	cfg.UseFSNotify = false
	s := newTestServer(t, cfg, nil)
	s.StartScanningIfNeeded()
	waitForStats(t, s, "scan", func(st Stats) bool { return st.Presets == 1 })

	testutil.WriteFile(t, dir, "a.floe-preset", presetBytes(t, "Ana", "new", "pad"))
	ok := testutil.WaitFor(waitTimeout, func() bool {
		snap := s.BeginReadFolders(nil)
		defer s.EndReadFolders()
		return reflect.DeepEqual(snap.Tags, []string{"new", "pad"})
	})
	if !ok {
		t.Fatalf("modification not picked up")
	}
}

func TestDepthLimit(t *testing.T) {
	dir := testutil.NewTempDir(t, "deep")
	testutil.WriteFile(t, dir, "top.floe-preset", presetBytes(t, "Ana"))
	testutil.WriteFile(t, dir, "a/one.floe-preset", presetBytes(t, "Ana"))
	testutil.WriteFile(t, dir, "a/b/two.floe-preset", presetBytes(t, "Ana"))
	cfg := testConfig(dir)
	cfg.MaxScanDepth = 1
	s := newTestServer(t, cfg, nil)
	s.StartScanningIfNeeded()
	waitForStats(t, s, "scan", func(st Stats) bool { return st.ScannedRoots == 1 })

	snap := s.BeginReadFolders(nil)
	defer s.EndReadFolders()
	if got := presetNames(snap); !reflect.DeepEqual(got, []string{"top", "one"}) {
		t.Errorf("presets = %v", got)
	}
}

func TestCacheReused(t *testing.T) {
	dir := testutil.NewTempDir(t, "presets")
	testutil.WriteFile(t, dir, "a.floe-preset", presetBytes(t, "Ana"))
	testutil.WriteFile(t, dir, "b.floe-preset", presetBytes(t, "Sam"))
	cfg := testConfig(dir)
	cfg.CachePath = filepath.Join(testutil.NewTempDir(t, "cache"), "presets.db")

	s := newTestServer(t, cfg, nil)
	s.StartScanningIfNeeded()
	waitForStats(t, s, "scan", func(st Stats) bool { return st.Presets == 2 })
	s.Shutdown()

	c, err := presetcache.Open(cfg.CachePath, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Errorf("cache has %d records", c.Len())
	}
	c.Close()

	before := serverOps.Count("cached", "parse_preset")
	s = newTestServer(t, cfg, nil)
	s.StartScanningIfNeeded()
	waitForStats(t, s, "scan", func(st Stats) bool { return st.Presets == 2 })
	if got := serverOps.Count("cached", "parse_preset") - before; got != 2 {
		t.Errorf("%d cache hits, want 2", got)
	}
}

func TestCacheForgetsDeletedPresets(t *testing.T) {
	dir := testutil.NewTempDir(t, "presets")
	testutil.WriteFile(t, dir, "a.floe-preset", presetBytes(t, "Ana"))
	testutil.WriteFile(t, dir, "b.floe-preset", presetBytes(t, "Sam"))
	cfg := testConfig(dir)
	cfg.CachePath = filepath.Join(testutil.NewTempDir(t, "cache"), "presets.db")

	// A record for a preset deleted while nothing was running.
	c, err := presetcache.Open(cfg.CachePath, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put(12345, &presetcache.Record{Name: "gone", Format: core.FileFormatFloe}); err != nil {
		t.Fatal(err)
	}
	c.Close()

	s := newTestServer(t, cfg, nil)
	s.StartScanningIfNeeded()
	waitForStats(t, s, "scan", func(st Stats) bool { return st.Presets == 2 })
	waitForCache := func(what string, cond func() bool) {
		t.Helper()
		if !testutil.WaitFor(waitTimeout, cond) {
			t.Fatalf("timed out waiting for %s; cache has %d records", what, s.cache.Len())
		}
	}
	waitForCache("sweep", func() bool { return s.cache.Len() == 2 })

	if err := os.Remove(filepath.Join(dir, "b.floe-preset")); err != nil {
		t.Fatal(err)
	}
	waitForStats(t, s, "delete", func(st Stats) bool { return st.Presets == 1 })
	waitForCache("deleted preset purged", func() bool { return s.cache.Len() == 1 })

	// Rewriting a preset replaces its record.
	data := presetBytes(t, "Zed")
	testutil.WriteFile(t, dir, "a.floe-preset", data)
	waitForCache("rewritten preset", func() bool {
		_, ok := s.cache.Get(fileHash(data, "a.floe-preset"))
		return ok && s.cache.Len() == 1
	})
}

func TestThrottledScan(t *testing.T) {
	dir := testutil.NewTempDir(t, "presets")
	data := presetBytes(t, "Ana")
	testutil.WriteFile(t, dir, "a.floe-preset", data)
	testutil.WriteFile(t, dir, "b.floe-preset", data)
	testutil.WriteFile(t, dir, "c.floe-preset", data)
	cfg := testConfig(dir)
	// The bucket starts with one second's worth, so the third file waits.
	cfg.ScanBytesPerSecond = float64(2 * len(data))

	s := newTestServer(t, cfg, nil)
	start := time.Now()
	s.StartScanningIfNeeded()
	waitForStats(t, s, "scan", func(st Stats) bool { return st.Presets == 3 })
	if d := time.Since(start); d < 300*time.Millisecond {
		t.Errorf("throttled scan took only %s", d)
	}
}

func TestBeginTwicePanics(t *testing.T) {
	s := newTestServer(t, testConfig(""), nil)
	s.BeginReadFolders(nil)
	defer s.EndReadFolders()
	defer func() {
		if recover() == nil {
			t.Errorf("second BeginReadFolders didn't panic")
		}
	}()
	s.BeginReadFolders(nil)
}

func TestShutdownIsPrompt(t *testing.T) {
	cfg := testConfig("")
	cfg.PollInterval = DefaultConfig.PollInterval
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.StartScanningIfNeeded()
	start := time.Now()
	s.Shutdown()
	if d := time.Since(start); d > cfg.PollInterval {
		t.Errorf("shutdown took %s", d)
	}
	// A second call returns immediately.
	s.Shutdown()
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %s", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.PollInterval = 0 },
		func(c *Config) { c.PollInterval = 2 * time.Second },
		func(c *Config) { c.MaxScanDepth = core.MaxFolderDepth + 1 },
		func(c *Config) { c.ScanBytesPerSecond = -1 },
		func(c *Config) { c.CachePath, c.CacheLRUSize = "x.db", 0 },
		func(c *Config) { c.ErrorRetryInterval = 0 },
	}
	for i, mod := range bad {
		c := DefaultConfig
		mod(&c)
		if err := c.Validate(); !core.ErrInvalidArgument.Is(err) {
			t.Errorf("case %d: got %v", i, err)
		}
		if _, err := New(c, nil); err == nil {
			t.Errorf("case %d: New accepted a bad config", i)
		}
	}
}

type mockReporter struct {
	*testutil.GenericMock
}

func (m *mockReporter) Set(category, id string, err error) {
	m.GetResult("Set", category, id, core.FromError(err))
}

func (m *mockReporter) Clear(category, id string) {
	m.GetResult("Clear", category, id)
}

func TestErrorReporting(t *testing.T) {
	base := testutil.NewTempDir(t, "report")
	root := normalisePath(testutil.NewTempDir(t, "root"))
	missing := normalisePath(filepath.Join(base, "missing"))
	rep := &mockReporter{testutil.NewGenericMock(t)}

	cfg := testConfig(root)
	cfg.ErrorRetryInterval = time.Hour
	s := newTestServer(t, cfg, rep)

	rep.AddCall("Clear", nil, ErrorCategory, root)
	s.StartScanningIfNeeded()
	if !rep.WaitForCalls(waitTimeout) {
		t.Fatalf("successful scan didn't clear errors")
	}

	rep.AddCall("Set", nil, ErrorCategory, missing, core.ErrFileNotFound)
	s.SetExtraScanFolders([]string{missing})
	if !rep.WaitForCalls(waitTimeout) {
		t.Fatalf("missing folder not reported")
	}

	// Dropping a root clears its error and rescans the others.
	rep.AddCall("Clear", nil, ErrorCategory, missing)
	rep.AddCall("Clear", nil, ErrorCategory, root)
	s.SetExtraScanFolders(nil)
	if !rep.WaitForCalls(waitTimeout) {
		t.Fatalf("expected calls not made")
	}

	time.Sleep(5 * cfg.PollInterval)
	rep.NoMoreCalls()
}
