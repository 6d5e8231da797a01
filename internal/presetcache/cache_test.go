// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetcache

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/golang/snappy"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/state"
	"github.com/westerndigitalcorporation/floe/pkg/testutil"
)

func testRecord(name string) *Record {
	return &Record{
		Name:          name,
		Author:        "Sam",
		Description:   "Slow strings.",
		Tags:          []string{"strings", "slow"},
		Libraries:     []core.LibraryID{"com.frozenplain.arctic-strings", "com.frozenplain.mirage-compat"},
		Format:        core.FileFormatMirage,
		SchemaVersion: state.VersionLatest,
	}
}

func openTemp(t *testing.T, lruSize int) (*Cache, string) {
	path := filepath.Join(testutil.NewTempDir(t, "cache"), "presets.db")
	c, err := Open(path, lruSize)
	if err != nil {
		t.Fatal(err)
	}
	return c, path
}

func TestRecordRoundTrip(t *testing.T) {
	for _, r := range []*Record{testRecord("Arctic"), {Name: "bare"}, {}} {
		got := GetRootAsPresetRecordF(BuildRecord(r), 0).ToStruct()
		if !reflect.DeepEqual(got, r) {
			t.Errorf("got %+v, want %+v", got, r)
		}
	}
}

func TestRecordFromSnapshot(t *testing.T) {
	s := state.Default()
	s.Instruments[2] = core.Sampler("com.frozenplain.wraith", "Ghost")
	s.Metadata = state.Metadata{Author: "Alex", Tags: []string{"pad"}}
	r := RecordFromSnapshot("Ghost Pad", core.FileFormatFloe, s)
	s.Metadata.Tags[0] = "changed"
	if r.Name != "Ghost Pad" || r.Author != "Alex" || r.Tags[0] != "pad" {
		t.Errorf("record %+v", r)
	}
	if !reflect.DeepEqual(r.Libraries, []core.LibraryID{"com.frozenplain.wraith"}) {
		t.Errorf("libraries %v", r.Libraries)
	}
}

func TestPutGetDelete(t *testing.T) {
	c, path := openTemp(t, 1)
	if _, ok := c.Get(1); ok {
		t.Fatalf("empty cache has a record")
	}
	for h := uint64(1); h <= 3; h++ {
		if err := c.Put(h, testRecord(string(rune('a'+h)))); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 3 {
		t.Errorf("len %d", c.Len())
	}
	// Only one record fits the LRU; the rest come from bolt.
	for h := uint64(1); h <= 3; h++ {
		r, ok := c.Get(h)
		if !ok || r.Name != string(rune('a'+h)) {
			t.Errorf("hash %d: %+v %v", h, r, ok)
		}
	}
	if err := c.Delete(2); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(2); ok || c.Len() != 2 {
		t.Errorf("deleted record still there")
	}

	// Missing hashes are ignored.
	if err := c.Put(4, testRecord("e")); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteMany([]uint64{1, 4, 99}); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("len %d after DeleteMany", c.Len())
	}
	for _, h := range []uint64{1, 4} {
		if _, ok := c.Get(h); ok {
			t.Errorf("hash %d still cached", h)
		}
	}

	if err := c.Put(6, testRecord("g")); err != nil {
		t.Fatal(err)
	}
	n, err := c.Sweep(func(h uint64) bool { return h == 3 })
	if err != nil || n != 1 {
		t.Errorf("Sweep = %d, %v", n, err)
	}
	if _, ok := c.Get(6); ok || c.Len() != 1 {
		t.Errorf("swept record still there")
	}

	// Records survive reopening.
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	c, err = Open(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if r, ok := c.Get(3); !ok || !reflect.DeepEqual(r, testRecord("d")) {
		t.Errorf("after reopen: %+v", r)
	}
}

func TestStaleAndCorruptEntries(t *testing.T) {
	c, _ := openTemp(t, 0)
	defer c.Close()

	old := testRecord("old")
	old.SchemaVersion = state.VersionInitial
	raw := map[uint64][]byte{
		1: snappy.Encode(nil, BuildRecord(old)),
		2: []byte("not snappy"),
		3: snappy.Encode(nil, []byte{1, 2}),
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		for h, v := range raw {
			if err := tx.Bucket(presetsBucket).Put(key(h), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for h := range raw {
		if r, ok := c.Get(h); ok {
			t.Errorf("hash %d: got %+v", h, r)
		}
	}
	if c.Len() != 0 {
		t.Errorf("bad entries not dropped: %d left", c.Len())
	}
}

func TestExportImport(t *testing.T) {
	c, path := openTemp(t, 0)
	for h := uint64(10); h < 20; h++ {
		if err := c.Put(h, testRecord("p")); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := c.Export(&buf); err != nil {
		t.Fatal(err)
	}
	c.Close()

	dst := filepath.Join(filepath.Dir(path), "imported.db")
	if err := Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatal(err)
	}
	imported, err := Open(dst, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer imported.Close()
	if imported.Len() != 10 {
		t.Errorf("imported %d records", imported.Len())
	}
	if r, ok := imported.Get(15); !ok || r.Author != "Sam" {
		t.Errorf("imported record %+v", r)
	}

	if err := Import(bytes.NewReader([]byte("garbage!")), dst); !core.ErrInvalidFileFormat.Is(err) {
		t.Errorf("garbage import: %v", err)
	}
}
