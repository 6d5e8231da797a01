// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetserver

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/golang/glog"
)

// watcher reports paths that changed since it was last polled. It's only
// used from the server goroutine.
type watcher interface {
	// Watch starts watching a walked directory or preset file.
	Watch(path string, isDir bool)
	// Forget stops watching root and everything below it.
	Forget(root string)
	// Changed returns the paths that changed since the last call.
	Changed() []string
	Close() error
}

func newWatcher(useFSNotify bool) watcher {
	if useFSNotify {
		w, err := fsnotify.NewWatcher()
		if err == nil {
			return newFSWatcher(w)
		}
		log.Warningf("fsnotify unavailable, falling back to polling: %s", err)
	}
	return &statWatcher{seen: make(map[string]fileStamp)}
}

func under(p, root string) bool {
	return p == root || strings.HasPrefix(p, strings.TrimSuffix(root, "/")+"/")
}

// fsWatcher watches directories with fsnotify. Events for files arrive
// through their directory's watch.
//
// Scan roots may reach the same directory through symlinks, and the OS keeps
// one watch per directory. So watches are kept by resolved path, each with
// the set of walked paths that lead to it. An event is reported under every
// one of those paths, and a watch is only removed once none is left.
type fsWatcher struct {
	w *fsnotify.Watcher
	// resolved directory -> walked paths that resolve to it.
	dirs map[string]map[string]bool
	// walked path -> resolved directory.
	resolved map[string]string
}

func newFSWatcher(w *fsnotify.Watcher) *fsWatcher {
	return &fsWatcher{
		w:        w,
		dirs:     make(map[string]map[string]bool),
		resolved: make(map[string]string),
	}
}

func resolvePath(p string) string {
	r, err := filepath.EvalSymlinks(filepath.FromSlash(p))
	if err != nil {
		return p
	}
	return filepath.ToSlash(r)
}

func (fw *fsWatcher) Watch(p string, isDir bool) {
	if !isDir {
		return
	}
	if _, ok := fw.resolved[p]; ok {
		return
	}
	r := resolvePath(p)
	// Adding again is harmless and revives a watch the OS dropped when the
	// directory was deleted and recreated.
	if err := fw.w.Add(filepath.FromSlash(r)); err != nil {
		log.Warningf("failed to watch %s: %s", p, err)
		return
	}
	if fw.dirs[r] == nil {
		fw.dirs[r] = make(map[string]bool)
	}
	fw.dirs[r][p] = true
	fw.resolved[p] = r
}

func (fw *fsWatcher) Forget(root string) {
	for p, r := range fw.resolved {
		if !under(p, root) {
			continue
		}
		delete(fw.resolved, p)
		delete(fw.dirs[r], p)
		if len(fw.dirs[r]) == 0 {
			delete(fw.dirs, r)
			// Fails if the OS already dropped the watch.
			fw.w.Remove(filepath.FromSlash(r))
		}
	}
}

// aliases returns name as seen from every walked path of the watched
// directory it's in.
func (fw *fsWatcher) aliases(name string) (out []string) {
	dir := path.Dir(name)
	for _, r := range []string{name, dir} {
		for p := range fw.dirs[r] {
			out = append(out, path.Join(p, strings.TrimPrefix(name, r)))
		}
	}
	if out == nil {
		out = append(out, name)
	}
	return out
}

func (fw *fsWatcher) Changed() (out []string) {
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return out
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			out = append(out, fw.aliases(filepath.ToSlash(ev.Name))...)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return out
			}
			// Events may have been lost, so everything is suspect.
			log.Errorf("fsnotify error: %s", err)
			for p := range fw.resolved {
				out = append(out, p)
			}
		default:
			return out
		}
	}
}

func (fw *fsWatcher) Close() error {
	return fw.w.Close()
}

type fileStamp struct {
	mtime time.Time
	size  int64
}

// statWatcher compares modification times on every poll.
type statWatcher struct {
	seen map[string]fileStamp
}

func stamp(path string) (fileStamp, bool) {
	fi, err := os.Stat(filepath.FromSlash(path))
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{mtime: fi.ModTime(), size: fi.Size()}, true
}

func (sw *statWatcher) Watch(path string, isDir bool) {
	if st, ok := stamp(path); ok {
		sw.seen[path] = st
	}
}

func (sw *statWatcher) Forget(root string) {
	for p := range sw.seen {
		if under(p, root) {
			delete(sw.seen, p)
		}
	}
}

func (sw *statWatcher) Changed() (out []string) {
	for p, old := range sw.seen {
		st, ok := stamp(p)
		switch {
		case !ok:
			delete(sw.seen, p)
		case st != old:
			sw.seen[p] = st
		default:
			continue
		}
		out = append(out, p)
	}
	return out
}

func (sw *statWatcher) Close() error {
	return nil
}
