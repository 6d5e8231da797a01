// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetserver

import (
	"strings"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/pkg/slices"
)

// FormatSet is a bitset of preset file formats.
type FormatSet uint8

// Has reports whether f is in the set.
func (s FormatSet) Has(f core.FileFormat) bool {
	return s&(1<<f) != 0
}

// With returns the set plus f.
func (s FormatSet) With(f core.FileFormat) FormatSet {
	return s | 1<<f
}

func (s FormatSet) String() string {
	var names []string
	for f := core.FileFormat(0); f < core.NumFileFormats; f++ {
		if s.Has(f) {
			names = append(names, f.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// aggregate is everything derived from the whole folder list. A new one is
// built for every publication and never modified afterwards.
type aggregate struct {
	root      *FolderNode
	tags      []string
	libraries []core.LibraryID
	authors   []string
	formats   FormatSet
	presets   int
}

func buildAggregate(roots []string, folders []*PresetFolder, maxDepth int) *aggregate {
	tags := make(map[string]bool)
	libs := make(map[core.LibraryID]bool)
	authors := make(map[string]bool)
	agg := &aggregate{root: buildFolderTree(roots, folders, maxDepth)}
	for _, f := range folders {
		for i := range f.Presets {
			p := &f.Presets[i]
			for _, t := range p.Tags {
				tags[t] = true
			}
			for _, l := range p.Libraries {
				libs[l] = true
			}
			if p.Author != "" {
				authors[p.Author] = true
			}
			agg.formats = agg.formats.With(p.FileFormat)
			agg.presets++
		}
	}
	agg.tags = slices.SortedKeys(tags)
	agg.libraries = slices.SortedKeys(libs)
	agg.authors = slices.SortedKeys(authors)
	return agg
}
