// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetserver

import (
	"math"
	"path"
	"sort"
	"strings"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/presetcache"
	"github.com/westerndigitalcorporation/floe/pkg/arena"
	"github.com/westerndigitalcorporation/floe/pkg/slices"
)

// noVersion marks "no reader" in versionInUse and "still live" in
// PresetFolder.deleteAfter.
const noVersion uint64 = math.MaxUint64

// Small folders don't need a full default chunk.
const folderArenaChunk = 4 << 10

// Preset is one indexed preset file.
type Preset struct {
	Name           string
	Author         string
	Description    string
	Tags           []string
	Libraries      []core.LibraryID
	LibraryAuthors []string
	FileHash       uint64
	FileExtension  string
	FileFormat     core.FileFormat
}

// PresetFolder holds the presets found directly inside one directory. It's
// immutable once published. Strings live in the folder's own arena.
type PresetFolder struct {
	// The scan root, with forward slashes.
	ScanFolder string
	// Path of this directory relative to ScanFolder, with forward slashes.
	// Empty for the root itself.
	Folder string
	// Sorted by name.
	Presets []Preset

	arena       *arena.Arena
	deleteAfter uint64
}

func newPresetFolder(scanFolder, folder string) *PresetFolder {
	f := &PresetFolder{arena: arena.New(folderArenaChunk), deleteAfter: noVersion}
	f.ScanFolder = f.arena.String(scanFolder)
	f.Folder = f.arena.String(folder)
	return f
}

// Path returns the directory the folder's presets are in.
func (f *PresetFolder) Path() string {
	return path.Join(f.ScanFolder, f.Folder)
}

// PresetPath returns the file path of the preset at index i.
func (f *PresetFolder) PresetPath(i int) string {
	p := &f.Presets[i]
	return path.Join(f.ScanFolder, f.Folder, p.Name+p.FileExtension)
}

// MemoryUsed returns how many bytes of strings the folder holds.
func (f *PresetFolder) MemoryUsed() int {
	return f.arena.Used()
}

func (f *PresetFolder) addPreset(name, ext string, hash uint64, r *presetcache.Record) {
	a := f.arena
	p := Preset{
		Name:          a.String(name),
		Author:        a.String(r.Author),
		Description:   a.String(r.Description),
		Tags:          a.Strings(r.Tags),
		FileHash:      hash,
		FileExtension: a.String(ext),
		FileFormat:    r.Format,
	}
	var authors []string
	for _, lib := range r.Libraries {
		p.Libraries = append(p.Libraries, core.LibraryID(a.String(string(lib))))
		if author := lib.Author(); author != "" && !slices.Contains(authors, author) {
			authors = append(authors, author)
		}
	}
	p.LibraryAuthors = a.Strings(authors)
	f.Presets = append(f.Presets, p)
}

func (f *PresetFolder) sortPresets() {
	sort.SliceStable(f.Presets, func(i, j int) bool {
		return f.Presets[i].Name < f.Presets[j].Name
	})
}

// reclaim drops everything the folder owns. Nothing may reach the folder
// afterwards.
func (f *PresetFolder) reclaim() {
	f.Presets = nil
	f.arena.Reset()
}

func folderLess(a, b *PresetFolder) bool {
	if a.ScanFolder != b.ScanFolder {
		return a.ScanFolder < b.ScanFolder
	}
	return a.Folder < b.Folder
}

// insertFolder puts f into the sorted list.
func insertFolder(folders []*PresetFolder, f *PresetFolder) []*PresetFolder {
	i := sort.Search(len(folders), func(i int) bool { return !folderLess(folders[i], f) })
	folders = append(folders, nil)
	copy(folders[i+1:], folders[i:])
	folders[i] = f
	return folders
}

// FolderNode is a node of the folder tree. The top node has one child per
// scan root; below those, one node per path segment.
type FolderNode struct {
	Name        string
	DisplayName string
	Parent      *FolderNode
	FirstChild  *FolderNode
	Next        *FolderNode

	// The folder whose presets live at this node, if any.
	Folder *PresetFolder
}

// Children returns the node's children in order.
func (n *FolderNode) Children() []*FolderNode {
	var out []*FolderNode
	for c := n.FirstChild; c != nil; c = c.Next {
		out = append(out, c)
	}
	return out
}

// Child returns the child with the given name, or nil.
func (n *FolderNode) Child(name string) *FolderNode {
	for c := n.FirstChild; c != nil; c = c.Next {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Walk calls fn for n and every node below it, depth first.
func (n *FolderNode) Walk(fn func(*FolderNode)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.Next {
		c.Walk(fn)
	}
}

// Path returns the names from the top node's child down to n, joined by '/'.
func (n *FolderNode) Path() string {
	var parts []string
	for ; n != nil && n.Parent != nil; n = n.Parent {
		parts = append(parts, n.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// childNamed finds or inserts a child, keeping children sorted by name.
func (n *FolderNode) childNamed(name, display string) *FolderNode {
	link := &n.FirstChild
	for ; *link != nil; link = &(*link).Next {
		if (*link).Name == name {
			return *link
		}
		if (*link).Name > name {
			break
		}
	}
	c := &FolderNode{Name: name, DisplayName: display, Parent: n, Next: *link}
	*link = c
	return c
}

// buildFolderTree builds the tree for the given sorted folders. roots lists
// the scan roots so that empty ones still get a node.
func buildFolderTree(roots []string, folders []*PresetFolder, maxDepth int) *FolderNode {
	top := &FolderNode{}
	for _, r := range roots {
		top.childNamed(r, displayPath(r))
	}
	for _, f := range folders {
		rootNode := top.childNamed(f.ScanFolder, displayPath(f.ScanFolder))
		node := rootNode
		if f.Folder != "" {
			segments := strings.Split(f.Folder, "/")
			if len(segments) > maxDepth {
				// Too deep for one node per segment; hang it off the root
				// under its whole relative path.
				node = rootNode.childNamed(f.Folder, f.Folder)
			} else {
				for _, s := range segments {
					node = node.childNamed(s, s)
				}
			}
		}
		node.Folder = f
	}
	return top
}

// displayPath abbreviates a scan root to its last two segments.
func displayPath(root string) string {
	trimmed := strings.TrimRight(root, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) <= 2 {
		if trimmed == "" {
			return root
		}
		return trimmed
	}
	return ".../" + strings.Join(parts[len(parts)-2:], "/")
}
