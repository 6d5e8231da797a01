// Copyright (c) 2015 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package core

import (
	"path/filepath"
	"strings"
)

// Global constants that several components need to agree on are defined here.
// If a constant is only needed for single component, probably it should not be
// placed here.
const (
	// PresetFileExtension is the extension of presets in the current binary
	// format.
	PresetFileExtension = ".floe-preset"

	// MiragePresetExtensionPrefix starts the extension of every legacy text
	// preset (".mirage", ".mirage-preset", ...).
	MiragePresetExtensionPrefix = ".mirage"

	// MaxFolderDepth bounds how deep the preset server walks below a scan
	// root and how deep its folder tree grows.
	MaxFolderDepth = 10

	// NumLayers is the number of parallel sound-producing layers.
	NumLayers = 3

	// NumMacros is the number of user-assignable macro knobs.
	NumMacros = 4

	// MaxMacroDestinations bounds the routings of a single macro.
	MaxMacroDestinations = 6

	// MaxVelocityCurvePoints bounds the points of one layer's velocity curve.
	MaxVelocityCurvePoints = 8

	// MaxTags bounds the tags of one preset.
	MaxTags = 16

	// MaxTagLength bounds the length of one tag, in bytes.
	MaxTagLength = 64

	// MaxMacroNameLength bounds a macro's user-visible name, in bytes.
	MaxMacroNameLength = 32

	// MaxInstanceIDLength bounds the persisted instance identifier.
	MaxInstanceIDLength = 32
)

// FileFormat is the format a preset file was stored in.
type FileFormat uint8

const (
	// FileFormatFloe is the current binary format.
	FileFormatFloe FileFormat = iota
	// FileFormatMirage is the legacy text format.
	FileFormatMirage
	// NumFileFormats is the number of known formats.
	NumFileFormats
)

func (f FileFormat) String() string {
	switch f {
	case FileFormatFloe:
		return "floe"
	case FileFormatMirage:
		return "mirage"
	}
	return "unknown"
}

// FileFormatForPath picks the preset format from a file extension. ok is false
// for files that aren't presets.
func FileFormatForPath(path string) (format FileFormat, ok bool) {
	ext := filepath.Ext(path)
	switch {
	case ext == PresetFileExtension:
		return FileFormatFloe, true
	case strings.HasPrefix(ext, MiragePresetExtensionPrefix):
		return FileFormatMirage, true
	}
	return 0, false
}
