// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

// Package preset loads and saves presets in any supported format. Whatever a
// file was written with, callers get a snapshot at the current schema.
package preset

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	log "github.com/golang/glog"

	"github.com/westerndigitalcorporation/floe/internal/adapter"
	"github.com/westerndigitalcorporation/floe/internal/codec"
	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/legacy"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

// DecodeFromMemory decodes a preset, telling the format apart by its content.
// In abbreviated mode parameter values and velocity curves are not read; the
// result is only good for indexing.
func DecodeFromMemory(data []byte, source state.Source, abbreviated bool) (*state.Snapshot, error) {
	format := core.FileFormatMirage
	if codec.IsPreset(data) {
		format = core.FileFormatFloe
	}
	return DecodeAs(data, format, source, abbreviated)
}

// DecodeAs decodes a preset stored in the given format.
func DecodeAs(data []byte, format core.FileFormat, source state.Source, abbreviated bool) (*state.Snapshot, error) {
	switch format {
	case core.FileFormatFloe:
		s, h, err := codec.Decode(data, codec.Options{Abbreviated: abbreviated})
		if err != nil {
			return nil, err
		}
		log.V(2).Infof("decoded preset version %s written by %s", h.Version, h.Writer)
		adapter.AdaptNewerParams(s, h.Version, source)
		return s, nil

	case core.FileFormatMirage:
		s, info, err := legacy.Decode(data)
		if err != nil {
			return nil, err
		}
		log.V(2).Infof("decoded Mirage %s preset", legacy.MirageVersionString(info.MirageVersion))
		adapter.AdaptNewerParams(s, legacy.SnapshotVersion, source)
		return s, nil
	}
	return nil, fmt.Errorf("%w: format %d", core.ErrUnsupportedFileType.Error(), format)
}

// DecodeFromReader reads a whole preset from r and decodes it.
func DecodeFromReader(r io.Reader, format core.FileFormat, source state.Source, abbreviated bool) (*state.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ioError(err)
	}
	return DecodeAs(data, format, source, abbreviated)
}

// LoadPresetFile decodes the preset at path, picking the format by extension.
func LoadPresetFile(path string, abbreviated bool) (*state.Snapshot, error) {
	format, ok := core.FileFormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFileType.Error(), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError(err)
	}
	s, err := DecodeAs(data, format, state.SourcePresetFile, abbreviated)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.V(1).Infof("loaded preset %s", path)
	return s, nil
}

// SavePresetFile writes s to path in the current format. The file is written
// next to path and renamed over it, so readers never see a partial preset.
func SavePresetFile(path string, s *state.Snapshot) error {
	if format, ok := core.FileFormatForPath(path); !ok || format != core.FileFormatFloe {
		return fmt.Errorf("%w: can only save %s files, not %s",
			core.ErrUnsupportedFileType.Error(), core.PresetFileExtension, path)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := codec.EncodeTo(&buf, s); err != nil {
		return err
	}

	tmpPath := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())
	defer os.Remove(tmpPath)
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return ioError(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return ioError(err)
	}
	log.V(1).Infof("saved preset %s (%d bytes)", path, buf.Len())
	return nil
}

// ConvertMirage decodes a Mirage preset and returns it in the current format.
func ConvertMirage(path string) ([]byte, error) {
	if format, ok := core.FileFormatForPath(path); !ok || format != core.FileFormatMirage {
		return nil, fmt.Errorf("%w: %s is not a Mirage preset", core.ErrUnsupportedFileType.Error(), path)
	}
	s, err := LoadPresetFile(path, false)
	if err != nil {
		return nil, err
	}
	return codec.Encode(s)
}

// SetToDefaultState resets s to a freshly opened instrument.
func SetToDefaultState(s *state.Snapshot) {
	state.SetToDefault(s)
}

// RandomiseAllParameterValues gives s random parameter values and effect
// order. rng may be nil.
func RandomiseAllParameterValues(s *state.Snapshot, rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	state.Randomise(s, rng)
	if n := s.EnforceRanges(); n > 0 {
		log.Errorf("randomise produced %d out of range values", n)
	}
}

func ioError(err error) error {
	return fmt.Errorf("%w: %s", core.FromError(err).Error(), err)
}
