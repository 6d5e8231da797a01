// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetserver

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/zeebo/xxh3"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/preset"
	"github.com/westerndigitalcorporation/floe/internal/presetcache"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

// errStopped aborts a walk when the server is shutting down.
var errStopped = errors.New("preset server stopping")

// fileHash identifies a preset by its contents and where it sits below its
// scan root, so the same file reached through two roots is indexed once.
func fileHash(data []byte, relPath string) uint64 {
	return xxh3.Hash(data) + xxh3.HashString(relPath)
}

func (s *Server) scanRoot(r *scanRoot) {
	op := serverOps.Start("scan_root")
	start := time.Now()
	err := s.walkRoot(r)
	r.scanned = true
	switch {
	case err == errStopped:
		op.Result("stopped")
		op.End()
	case err != nil:
		r.failedAt = time.Now()
		log.Errorf("failed to scan %s: %s", r.path, err)
		s.errs.Set(ErrorCategory, r.path, err)
		op.EndWithError(err)
	default:
		r.failedAt = time.Time{}
		s.errs.Clear(ErrorCategory, r.path)
		log.V(1).Infof("scanned %s in %s", r.path, time.Since(start))
		op.End()
	}
}

func (s *Server) walkRoot(r *scanRoot) error {
	fi, err := os.Stat(filepath.FromSlash(r.path))
	if err != nil {
		return fmt.Errorf("%w: %s", core.FromError(err).Error(), err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a folder", core.ErrInvalidArgument.Error(), r.path)
	}
	truncated := false
	err = s.walk(r.path, "", 0, &truncated)
	if truncated {
		log.Warningf("%s: %s, skipped folders deeper than %d", r.path, core.ErrFolderContainsTooManyFiles, s.cfg.MaxScanDepth)
	}
	return err
}

// walk indexes the presets in root/rel and then descends into its
// subfolders. Only failing to read the root itself is an error.
func (s *Server) walk(root, rel string, depth int, truncated *bool) error {
	dir := path.Join(root, rel)
	s.watch.Watch(dir, true)
	entries, err := os.ReadDir(filepath.FromSlash(dir))
	if err != nil {
		if depth == 0 {
			return fmt.Errorf("%w: %s", core.FromError(err).Error(), err)
		}
		log.Warningf("skipping %s: %s", dir, err)
		return nil
	}

	var folder *PresetFolder
	var subdirs []string
	for _, e := range entries {
		if s.endThread.Load() {
			return errStopped
		}
		name := e.Name()
		if e.IsDir() {
			subdirs = append(subdirs, name)
			continue
		}
		format, ok := core.FileFormatForPath(name)
		if !ok {
			continue
		}
		file := path.Join(dir, name)
		s.watch.Watch(file, false)
		relFile := path.Join(rel, name)
		hash, rec, err := s.indexFile(file, relFile, format)
		if err == errStopped {
			return err
		}
		if rec == nil {
			continue
		}
		if folder == nil {
			folder = newPresetFolder(root, rel)
		}
		ext := path.Ext(name)
		folder.addPreset(strings.TrimSuffix(name, ext), ext, hash, rec)
		s.hashes[hash] = struct{}{}
	}

	if folder != nil {
		folder.sortPresets()
		folders := insertFolder(append([]*PresetFolder(nil), s.folders...), folder)
		s.publish(folders, nil)
	}

	for _, d := range subdirs {
		if depth+1 > s.cfg.MaxScanDepth {
			*truncated = true
			break
		}
		if err := s.walk(root, path.Join(rel, d), depth+1, truncated); err != nil {
			return err
		}
	}
	return nil
}

// indexFile reads and parses one preset, or fetches its record from the
// cache. rec is nil if the file is a duplicate or can't be parsed.
func (s *Server) indexFile(file, relFile string, format core.FileFormat) (hash uint64, rec *presetcache.Record, err error) {
	op := serverOps.Start("parse_preset")
	osPath := filepath.FromSlash(file)
	fi, err := os.Stat(osPath)
	if err != nil {
		log.Warningf("skipping %s: %s", file, err)
		op.EndWithError(err)
		return 0, nil, nil
	}
	if err := s.throttle.Wait(s.ctx, float64(fi.Size())); err != nil {
		op.Result("stopped")
		op.End()
		return 0, nil, errStopped
	}
	data, err := os.ReadFile(osPath)
	if err != nil {
		log.Warningf("skipping %s: %s", file, err)
		op.EndWithError(err)
		return 0, nil, nil
	}
	bytesScanned.Add(float64(len(data)))

	hash = fileHash(data, relFile)
	if _, dup := s.hashes[hash]; dup {
		op.Result("duplicate")
		op.End()
		return hash, nil, nil
	}

	if s.cache != nil {
		if rec, ok := s.cache.Get(hash); ok && rec.Format == format {
			cacheLookups.WithLabelValues("hit").Inc()
			op.Result("cached")
			op.End()
			return hash, rec, nil
		}
		cacheLookups.WithLabelValues("miss").Inc()
	}

	snap, err := preset.DecodeAs(data, format, state.SourcePresetFile, true)
	if err != nil {
		log.Errorf("skipping preset %s: %s", file, err)
		op.EndWithError(err)
		return hash, nil, nil
	}
	name := strings.TrimSuffix(path.Base(file), path.Ext(file))
	rec = presetcache.RecordFromSnapshot(name, format, snap)
	if s.cache != nil {
		if err := s.cache.Put(hash, rec); err != nil {
			log.Errorf("failed to cache %s: %s", file, err)
		}
	}
	op.End()
	return hash, rec, nil
}
