// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

// Package presetserver keeps a searchable index of the presets under a set of
// folders. One goroutine does all scanning and publishes immutable
// snapshots; one reader at a time borrows the latest snapshot with
// BeginReadFolders and returns it with EndReadFolders. Removed folders are
// kept until no snapshot can reach them.
package presetserver

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/golang/glog"

	"github.com/westerndigitalcorporation/floe/internal/notify"
	"github.com/westerndigitalcorporation/floe/internal/presetcache"
	"github.com/westerndigitalcorporation/floe/internal/server"
	"github.com/westerndigitalcorporation/floe/pkg/arena"
	"github.com/westerndigitalcorporation/floe/pkg/tokenbucket"
)

// ErrorCategory is the notification category scan root errors are reported
// under. The id is the root's path.
const ErrorCategory = "preset-folder"

// ErrorReporter receives errors about scan roots. *notify.Notifications
// implements it.
type ErrorReporter interface {
	Set(category, id string, err error)
	Clear(category, id string)
}

type scanRoot struct {
	path    string
	always  bool
	scanned bool

	// Set when the watcher saw a change below the root.
	rescan bool

	// When the last scan failed; zero if it didn't.
	failedAt time.Time
}

// Stats describes the server's current state.
type Stats struct {
	PublishedVersion uint64
	Roots            int
	ScannedRoots     int
	Folders          int
	Presets          int
	PendingReclaim   int
}

// Server indexes presets. Create one with New.
type Server struct {
	cfg       Config
	errs      ErrorReporter
	cache     *presetcache.Cache
	throttle  *tokenbucket.TokenBucket
	signaller server.Signaller
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}

	// Advisory flags.
	enableScanning atomic.Bool
	endThread      atomic.Bool

	publishedVersion atomic.Uint64
	// The version the reader holds, or noVersion.
	versionInUse atomic.Uint64

	// Protects the published state below. The server goroutine is its only
	// writer and replaces the slices rather than modifying them.
	lock      sync.Mutex
	folders   []*PresetFolder
	agg       *aggregate
	rootPaths []string

	// Mailbox for SetExtraScanFolders.
	requestLock sync.Mutex
	request     []string
	hasRequest  bool

	// Everything below is owned by the server goroutine.
	roots     []*scanRoot
	hashes    map[uint64]struct{}
	// Hashes unpublished since the cache was last purged.
	dropped   map[uint64]struct{}
	swept     bool
	pending   []*PresetFolder
	watch     watcher
	cachePath string

	pendingCount atomic.Int64
	scannedRoots atomic.Int64
}

// New starts a server. Scanning doesn't begin until StartScanningIfNeeded or
// BeginReadFolders is called. errs may be nil.
func New(cfg Config, errs ErrorReporter) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if errs == nil {
		errs = &notify.Notifications{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:       cfg,
		errs:      errs,
		throttle:  tokenbucket.New(cfg.ScanBytesPerSecond, cfg.ScanBytesPerSecond),
		signaller: server.NewSignaller(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		hashes:    make(map[uint64]struct{}),
		dropped:   make(map[uint64]struct{}),
		watch:     newWatcher(cfg.UseFSNotify),
	}
	s.versionInUse.Store(noVersion)

	if cfg.CachePath != "" {
		c, err := presetcache.Open(cfg.CachePath, cfg.CacheLRUSize)
		if err != nil {
			// Scanning still works, just slower.
			log.Errorf("preset cache disabled: %s", err)
		} else {
			s.cache = c
			s.cachePath = normalisePath(cfg.CachePath)
		}
	}
	if cfg.AlwaysScannedFolder != "" {
		s.roots = append(s.roots, &scanRoot{path: normalisePath(cfg.AlwaysScannedFolder), always: true})
	}
	s.publish(nil, nil)

	go s.loop()
	return s, nil
}

// normalisePath makes every scan path use forward slashes.
func normalisePath(p string) string {
	p = strings.ReplaceAll(filepath.ToSlash(p), "\\", "/")
	if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
		p = filepath.ToSlash(abs)
	}
	return p
}

// Shutdown stops the server goroutine and waits for it to exit. The reader
// must have ended any snapshot it holds.
func (s *Server) Shutdown() {
	if !s.endThread.Swap(true) {
		s.cancel()
		s.signaller.Signal()
	}
	<-s.done
}

// SetExtraScanFolders replaces the folders scanned in addition to the always
// scanned folder. Safe to call from any goroutine.
func (s *Server) SetExtraScanFolders(paths []string) {
	s.requestLock.Lock()
	s.request = append([]string(nil), paths...)
	s.hasRequest = true
	s.requestLock.Unlock()
	s.signaller.Signal()
}

// StartScanningIfNeeded lets the server start scanning. Scanning stays on
// until Shutdown.
func (s *Server) StartScanningIfNeeded() {
	if !s.enableScanning.Swap(true) {
		s.signaller.Signal()
	}
}

// BeginReadFolders returns the latest publication. Tags and authors are
// copied into a if it's non-nil. Only one snapshot may be held at a time;
// call EndReadFolders before the next BeginReadFolders.
func (s *Server) BeginReadFolders(a *arena.Arena) *PresetsSnapshot {
	s.StartScanningIfNeeded()

	s.lock.Lock()
	defer s.lock.Unlock()
	v := s.publishedVersion.Load()
	if !s.versionInUse.CompareAndSwap(noVersion, v) {
		panic("presetserver: BeginReadFolders called while a snapshot is held")
	}
	agg := s.agg
	snap := &PresetsSnapshot{
		Version:   v,
		Folders:   append([]*PresetFolder(nil), s.folders...),
		Root:      agg.root,
		Libraries: append(agg.libraries[:0:0], agg.libraries...),
		Formats:   agg.formats,
	}
	if a != nil {
		snap.Tags = a.Strings(agg.tags)
		snap.Authors = a.Strings(agg.authors)
	} else {
		snap.Tags = append([]string(nil), agg.tags...)
		snap.Authors = append([]string(nil), agg.authors...)
	}
	return snap
}

// EndReadFolders releases the snapshot returned by BeginReadFolders.
func (s *Server) EndReadFolders() {
	if s.versionInUse.Swap(noVersion) == noVersion {
		log.Errorf("EndReadFolders called without a snapshot")
	}
}

// Stats returns counts describing the latest publication.
func (s *Server) Stats() Stats {
	s.lock.Lock()
	defer s.lock.Unlock()
	return Stats{
		PublishedVersion: s.publishedVersion.Load(),
		Roots:            len(s.rootPaths),
		ScannedRoots:     int(s.scannedRoots.Load()),
		Folders:          len(s.folders),
		Presets:          s.agg.presets,
		PendingReclaim:   int(s.pendingCount.Load()),
	}
}

func (s *Server) loop() {
	defer close(s.done)
	for !s.endThread.Load() {
		s.signaller.Wait(s.cfg.PollInterval)
		if s.endThread.Load() {
			break
		}
		s.takeScanFolderRequest()
		if !s.enableScanning.Load() {
			continue
		}
		s.pollWatcher()
		for _, r := range s.roots {
			if s.endThread.Load() {
				break
			}
			if r.scanned && !r.failedAt.IsZero() && time.Since(r.failedAt) >= s.cfg.ErrorRetryInterval {
				r.rescan = true
			}
			if r.rescan {
				s.removeRootFolders(r.path)
				r.rescan = false
				r.scanned = false
			}
			if !r.scanned {
				s.scanRoot(r)
			}
		}
		s.reclaim()
		s.purgeCache()

		scanned := 0
		for _, r := range s.roots {
			if r.scanned {
				scanned++
			}
		}
		s.scannedRoots.Store(int64(scanned))
	}

	if err := s.watch.Close(); err != nil {
		log.Errorf("failed to close watcher: %s", err)
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			log.Errorf("failed to close preset cache: %s", err)
		}
	}
}

func (s *Server) takeScanFolderRequest() {
	s.requestLock.Lock()
	paths, ok := s.request, s.hasRequest
	s.request, s.hasRequest = nil, false
	s.requestLock.Unlock()
	if !ok {
		return
	}

	var roots []*scanRoot
	have := make(map[string]*scanRoot)
	for _, r := range s.roots {
		have[r.path] = r
		if r.always {
			roots = append(roots, r)
		}
	}
	wanted := make(map[string]bool)
	for _, r := range roots {
		wanted[r.path] = true
	}
	for _, p := range paths {
		p = normalisePath(p)
		if wanted[p] {
			continue
		}
		wanted[p] = true
		if r := have[p]; r != nil {
			roots = append(roots, r)
		} else {
			roots = append(roots, &scanRoot{path: p})
		}
	}

	removedAny := false
	for _, r := range s.roots {
		if !wanted[r.path] {
			log.Infof("no longer scanning %s", r.path)
			s.removeRootFolders(r.path)
			s.errs.Clear(ErrorCategory, r.path)
			removedAny = true
		}
	}
	if removedAny {
		// A removed root may have hidden presets that another root also
		// has, so those need another look.
		for _, r := range roots {
			if r.scanned {
				r.rescan = true
			}
		}
	}
	s.roots = roots
	s.publish(s.folders, nil)
}

func (s *Server) pollWatcher() {
	for _, p := range s.watch.Changed() {
		if s.cachePath != "" && strings.HasPrefix(p, s.cachePath) {
			continue
		}
		for _, r := range s.roots {
			if r.scanned && under(p, r.path) {
				if !r.rescan {
					log.V(1).Infof("%s changed, rescanning %s", p, r.path)
				}
				r.rescan = true
			}
		}
	}
}

// removeRootFolders unpublishes every folder under root.
func (s *Server) removeRootFolders(root string) {
	s.watch.Forget(root)
	var kept, removed []*PresetFolder
	for _, f := range s.folders {
		if f.ScanFolder == root {
			removed = append(removed, f)
		} else {
			kept = append(kept, f)
		}
	}
	if len(removed) == 0 {
		return
	}
	for _, f := range removed {
		for i := range f.Presets {
			h := f.Presets[i].FileHash
			delete(s.hashes, h)
			if s.cache != nil {
				s.dropped[h] = struct{}{}
			}
		}
	}
	s.publish(kept, removed)
}

// purgeCache deletes cache records for presets that no root holds any more.
// It waits until every root has been scanned cleanly, since a root that
// hasn't may still hold some of them. The first time, it also sweeps out
// records left by presets deleted while the server wasn't running.
func (s *Server) purgeCache() {
	if s.cache == nil || s.endThread.Load() || len(s.roots) == 0 {
		return
	}
	if s.swept && len(s.dropped) == 0 {
		return
	}
	for _, r := range s.roots {
		if !r.scanned || !r.failedAt.IsZero() {
			return
		}
	}

	var n int
	var err error
	if !s.swept {
		n, err = s.cache.Sweep(func(h uint64) bool {
			_, live := s.hashes[h]
			return live
		})
		s.swept = true
	} else {
		var stale []uint64
		for h := range s.dropped {
			if _, live := s.hashes[h]; !live {
				stale = append(stale, h)
			}
		}
		if len(stale) > 0 {
			n, err = len(stale), s.cache.DeleteMany(stale)
		}
	}
	s.dropped = make(map[uint64]struct{})
	if err != nil {
		log.Errorf("failed to purge preset cache: %s", err)
		return
	}
	if n > 0 {
		log.V(1).Infof("purged %d preset cache records", n)
		cachePurged.Add(float64(n))
	}
}

// publish installs folders as the new catalogue. Folders in removed are
// kept for reclaim.
func (s *Server) publish(folders, removed []*PresetFolder) {
	op := serverOps.Start("publish")
	rootPaths := make([]string, len(s.roots))
	for i, r := range s.roots {
		rootPaths[i] = r.path
	}
	agg := buildAggregate(rootPaths, folders, s.cfg.MaxScanDepth)

	s.lock.Lock()
	v := s.publishedVersion.Load()
	for _, f := range removed {
		f.deleteAfter = v
	}
	s.folders = folders
	s.agg = agg
	s.rootPaths = rootPaths
	s.publishedVersion.Store(v + 1)
	s.lock.Unlock()

	s.pending = append(s.pending, removed...)
	s.pendingCount.Store(int64(len(s.pending)))

	publishedVersionGauge.Set(float64(v + 1))
	foldersGauge.Set(float64(len(folders)))
	presetsGauge.Set(float64(agg.presets))
	pendingReclaimGauge.Set(float64(len(s.pending)))
	op.End()
}

// reclaim frees removed folders that no snapshot can reach: those superseded
// by a newer publication, while the reader (if any) holds a version newer
// than the folder's removal.
func (s *Server) reclaim() {
	if len(s.pending) == 0 {
		return
	}
	op := serverOps.Start("reclaim")
	published := s.publishedVersion.Load()
	inUse := s.versionInUse.Load()
	kept := s.pending[:0]
	for _, f := range s.pending {
		if f.deleteAfter < published && (inUse == noVersion || inUse > f.deleteAfter) {
			f.reclaim()
		} else {
			kept = append(kept, f)
		}
	}
	for i := len(kept); i < len(s.pending); i++ {
		s.pending[i] = nil
	}
	s.pending = kept
	s.pendingCount.Store(int64(len(kept)))
	pendingReclaimGauge.Set(float64(len(kept)))
	op.End()
}
