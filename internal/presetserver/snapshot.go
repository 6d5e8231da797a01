// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetserver

import (
	"strings"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/pkg/slices"
)

// PresetsSnapshot is the catalogue as of one publication. It stays valid
// until the matching EndReadFolders.
type PresetsSnapshot struct {
	Version uint64

	// Sorted by scan folder, then folder.
	Folders []*PresetFolder
	Root    *FolderNode

	// Sorted, distinct.
	Tags      []string
	Libraries []core.LibraryID
	Authors   []string

	Formats FormatSet
}

// NumPresets returns the number of presets across all folders.
func (ps *PresetsSnapshot) NumPresets() int {
	n := 0
	for _, f := range ps.Folders {
		n += len(f.Presets)
	}
	return n
}

// Query selects presets. Zero fields match everything.
type Query struct {
	// Case-insensitive substring of the preset name.
	Name string
	// Every tag must be present.
	Tags []string
	// Every library must be used.
	Libraries []core.LibraryID
	// The preset's author must be one of these.
	Authors []string
	// The preset's format must be in the set.
	Formats FormatSet
}

// Match is one preset selected by a Query.
type Match struct {
	Folder *PresetFolder
	Index  int
}

// Preset returns the matched preset.
func (m Match) Preset() *Preset {
	return &m.Folder.Presets[m.Index]
}

// Path returns the file path of the matched preset.
func (m Match) Path() string {
	return m.Folder.PresetPath(m.Index)
}

// Filter returns the presets matching q in catalogue order.
func (ps *PresetsSnapshot) Filter(q Query) []Match {
	name := strings.ToLower(q.Name)
	var out []Match
	for _, f := range ps.Folders {
		for i := range f.Presets {
			p := &f.Presets[i]
			if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
				continue
			}
			if !slices.ContainsAll(p.Tags, q.Tags) || !slices.ContainsAll(p.Libraries, q.Libraries) {
				continue
			}
			if len(q.Authors) != 0 && !slices.Contains(q.Authors, p.Author) {
				continue
			}
			if q.Formats != 0 && !q.Formats.Has(p.FileFormat) {
				continue
			}
			out = append(out, Match{Folder: f, Index: i})
		}
	}
	return out
}
