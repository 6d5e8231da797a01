// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetcache

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

// Record is what the preset server indexes about one preset file.
type Record struct {
	Name          string
	Author        string
	Description   string
	Tags          []string
	Libraries     []core.LibraryID
	Format        core.FileFormat
	SchemaVersion state.Version
}

// RecordFromSnapshot picks the indexed fields out of a decoded preset.
func RecordFromSnapshot(name string, format core.FileFormat, s *state.Snapshot) *Record {
	return &Record{
		Name:          name,
		Author:        s.Metadata.Author,
		Description:   s.Metadata.Description,
		Tags:          append([]string(nil), s.Metadata.Tags...),
		Libraries:     s.UsedLibraries(),
		Format:        format,
		SchemaVersion: state.VersionLatest,
	}
}

// BuildRecord encodes a Record.
func BuildRecord(r *Record) []byte {
	bu := flatbuffers.NewBuilder(256)

	putStrings := func(ss []string, start func(*flatbuffers.Builder, int) flatbuffers.UOffsetT) flatbuffers.UOffsetT {
		if len(ss) == 0 {
			return 0 // default value, will make flatbuffers not add field
		}
		offs := make([]flatbuffers.UOffsetT, len(ss))
		for i, s := range ss {
			offs[i] = bu.CreateString(s)
		}
		start(bu, len(ss))
		for i := len(offs) - 1; i >= 0; i-- {
			bu.PrependUOffsetT(offs[i])
		}
		return bu.EndVector(len(ss))
	}

	libs := make([]string, len(r.Libraries))
	for i, l := range r.Libraries {
		libs[i] = string(l)
	}

	name := bu.CreateString(r.Name)
	author := bu.CreateString(r.Author)
	desc := bu.CreateString(r.Description)
	tags := putStrings(r.Tags, PresetRecordFStartTagsVector)
	libVec := putStrings(libs, PresetRecordFStartLibrariesVector)

	PresetRecordFStart(bu)
	PresetRecordFAddName(bu, name)
	PresetRecordFAddAuthor(bu, author)
	PresetRecordFAddDescription(bu, desc)
	PresetRecordFAddTags(bu, tags)
	PresetRecordFAddLibraries(bu, libVec)
	PresetRecordFAddFormat(bu, byte(r.Format))
	PresetRecordFAddSchemaVersion(bu, uint16(r.SchemaVersion))
	bu.Finish(PresetRecordFEnd(bu))
	return bu.FinishedBytes()
}

// ToStruct copies the record out of the buffer.
func (rcv *PresetRecordF) ToStruct() *Record {
	r := &Record{
		Name:          string(rcv.Name()),
		Author:        string(rcv.Author()),
		Description:   string(rcv.Description()),
		Format:        core.FileFormat(rcv.Format()),
		SchemaVersion: state.Version(rcv.SchemaVersion()),
	}
	if n := rcv.TagsLength(); n > 0 {
		r.Tags = make([]string, n)
		for i := range r.Tags {
			r.Tags[i] = string(rcv.Tags(i))
		}
	}
	if n := rcv.LibrariesLength(); n > 0 {
		r.Libraries = make([]core.LibraryID, n)
		for i := range r.Libraries {
			r.Libraries[i] = core.LibraryID(rcv.Libraries(i))
		}
	}
	return r
}
