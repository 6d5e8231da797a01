// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

// Package presetcache remembers what the preset server learnt about preset
// files, so a restart doesn't have to parse every preset again.
//
// Records live in BoltDB, keyed by the big-endian file hash. Each value is a
// snappy-compressed FlatBuffer (PresetRecordF). An LRU of decoded records
// sits in front of the database.
package presetcache

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	log "github.com/golang/glog"
	"github.com/golang/groupcache/lru"
	"github.com/golang/snappy"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

var presetsBucket = []byte("presets")

const (
	mode = 0600

	// The magic number that starts an exported cache.
	exportMagic uint32 = 0xF10E5CAC
	// Version of the export stream: snappy-compressed bolt file.
	exportVersion uint32 = 1
)

// Cache is safe for concurrent use.
type Cache struct {
	db *bolt.DB

	// Protects recent.
	lock   sync.Mutex
	recent *lru.Cache
}

// Open opens the cache at path, creating it if needed. lruSize bounds the
// decoded records kept in memory; zero means no bound.
func Open(path string, lruSize int) (*Cache, error) {
	db, err := bolt.Open(path, mode, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: opening cache %s: %s", core.FromError(err).Error(), path, err)
	}
	// Losing the tail of the cache in a crash only costs a re-parse.
	db.NoSync = true

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(presetsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s", core.ErrIO.Error(), err)
	}
	log.Infof("opened preset cache %s", path)
	return &Cache{db: db, recent: lru.New(lruSize)}, nil
}

func key(hash uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], hash)
	return k[:]
}

// Get returns the record for hash. Records are shared; callers must not
// modify them.
func (c *Cache) Get(hash uint64) (*Record, bool) {
	c.lock.Lock()
	if v, ok := c.recent.Get(hash); ok {
		c.lock.Unlock()
		return v.(*Record), true
	}
	c.lock.Unlock()

	var rec *Record
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(presetsBucket).Get(key(hash))
		if v == nil {
			return nil
		}
		buf, err := snappy.Decode(nil, v)
		if err != nil {
			return err
		}
		rec, err = toStruct(buf)
		return err
	})
	if err != nil {
		log.Errorf("dropping unreadable cache entry %016x: %s", hash, err)
		c.Delete(hash)
		return nil, false
	}
	if rec == nil {
		return nil, false
	}
	if rec.SchemaVersion != state.VersionLatest {
		// Indexed by an older build; its view of the preset may be stale.
		c.Delete(hash)
		return nil, false
	}

	c.lock.Lock()
	c.recent.Add(hash, rec)
	c.lock.Unlock()
	return rec, true
}

// toStruct decodes a buffer, turning the panics FlatBuffers raises on
// malformed input into errors.
func toStruct(buf []byte) (r *Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", core.ErrCorruptData.Error(), p)
		}
	}()
	if len(buf) < 4 {
		return nil, core.ErrCorruptData.Error()
	}
	return GetRootAsPresetRecordF(buf, 0).ToStruct(), nil
}

// Put stores r under hash, stamped with the current schema version.
func (c *Cache) Put(hash uint64, r *Record) error {
	stamped := *r
	stamped.SchemaVersion = state.VersionLatest
	r = &stamped
	val := snappy.Encode(nil, BuildRecord(r))
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(presetsBucket).Put(key(hash), val)
	})
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrIO.Error(), err)
	}
	c.lock.Lock()
	c.recent.Add(hash, r)
	c.lock.Unlock()
	return nil
}

// Delete removes hash from the cache.
func (c *Cache) Delete(hash uint64) error {
	c.lock.Lock()
	c.recent.Remove(hash)
	c.lock.Unlock()
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(presetsBucket).Delete(key(hash))
	})
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrIO.Error(), err)
	}
	return nil
}

// DeleteMany removes the records for hashes in a single transaction.
func (c *Cache) DeleteMany(hashes []uint64) error {
	c.lock.Lock()
	for _, h := range hashes {
		c.recent.Remove(h)
	}
	c.lock.Unlock()
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(presetsBucket)
		for _, h := range hashes {
			if err := b.Delete(key(h)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrIO.Error(), err)
	}
	return nil
}

// Sweep deletes every record whose hash keep rejects, and returns how many
// it deleted.
func (c *Cache) Sweep(keep func(hash uint64) bool) (int, error) {
	var stale []uint64
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(presetsBucket).ForEach(func(k, _ []byte) error {
			if len(k) == 8 {
				if h := binary.BigEndian.Uint64(k); !keep(h) {
					stale = append(stale, h)
				}
			}
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s", core.ErrIO.Error(), err)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	return len(stale), c.DeleteMany(stale)
}

// Len returns the number of records stored.
func (c *Cache) Len() int {
	n := 0
	c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(presetsBucket).Stats().KeyN
		return nil
	})
	return n
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// The export stream has the following format:
//
//      4 bytes          4 bytes                   the rest
// ----------------------------------------------------------------------
// | magic number | export version | ...snappy-compressed bolt file... |
// ----------------------------------------------------------------------
//

// Export writes a consistent copy of the cache to w.
func (c *Cache) Export(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, exportMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, exportVersion); err != nil {
		return err
	}
	sw := snappy.NewBufferedWriter(w)
	err := c.db.View(func(tx *bolt.Tx) error {
		_, err := tx.WriteTo(sw)
		return err
	})
	if err != nil {
		log.Errorf("Failed to export preset cache: %v", err)
		return err
	}
	return sw.Close()
}

// Import replaces the cache file at path with an exported copy read from r.
// The cache at path must not be open.
func Import(r io.Reader, path string) error {
	var m, v uint32
	if err := binary.Read(r, binary.BigEndian, &m); err != nil {
		return fmt.Errorf("%w: reading magic: %s", core.ErrInvalidFileFormat.Error(), err)
	}
	if m != exportMagic {
		return fmt.Errorf("%w: not an exported preset cache", core.ErrInvalidFileFormat.Error())
	}
	if err := binary.Read(r, binary.BigEndian, &v); err != nil || v != exportVersion {
		return fmt.Errorf("%w: export version %d can not be handled", core.ErrInvalidFileFormat.Error(), v)
	}

	tmpPath := path + ".import"
	defer os.Remove(tmpPath)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("%w: %s", core.FromError(err).Error(), err)
	}
	if _, err = io.Copy(f, snappy.NewReader(r)); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s", core.ErrCorruptData.Error(), err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%w: %s", core.ErrIO.Error(), err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %s", core.FromError(err).Error(), err)
	}
	return nil
}
