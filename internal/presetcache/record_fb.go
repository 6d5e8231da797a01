// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetcache

// Accessors and builders for record.fbs, in the shape flatc generates them.

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

const (
	presetRecordFName = 4 + 2*iota
	presetRecordFAuthor
	presetRecordFDescription
	presetRecordFTags
	presetRecordFLibraries
	presetRecordFFormat
	presetRecordFSchemaVersion
	presetRecordFNumFields = iota
)

// PresetRecordF is the cached form of Record.
type PresetRecordF struct {
	_tab flatbuffers.Table
}

// GetRootAsPresetRecordF reads the table at the start of buf.
func GetRootAsPresetRecordF(buf []byte, offset flatbuffers.UOffsetT) *PresetRecordF {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &PresetRecordF{}
	x.Init(buf, n+offset)
	return x
}

func (rcv *PresetRecordF) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *PresetRecordF) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *PresetRecordF) str(slot flatbuffers.VOffsetT) []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(slot))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func (rcv *PresetRecordF) strVector(slot flatbuffers.VOffsetT, j int) []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(slot))
	if o != 0 {
		a := rcv._tab.Vector(o)
		return rcv._tab.ByteVector(a + flatbuffers.UOffsetT(j*4))
	}
	return nil
}

func (rcv *PresetRecordF) vectorLen(slot flatbuffers.VOffsetT) int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(slot))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *PresetRecordF) Name() []byte        { return rcv.str(presetRecordFName) }
func (rcv *PresetRecordF) Author() []byte      { return rcv.str(presetRecordFAuthor) }
func (rcv *PresetRecordF) Description() []byte { return rcv.str(presetRecordFDescription) }

func (rcv *PresetRecordF) Tags(j int) []byte { return rcv.strVector(presetRecordFTags, j) }
func (rcv *PresetRecordF) TagsLength() int   { return rcv.vectorLen(presetRecordFTags) }

func (rcv *PresetRecordF) Libraries(j int) []byte { return rcv.strVector(presetRecordFLibraries, j) }
func (rcv *PresetRecordF) LibrariesLength() int   { return rcv.vectorLen(presetRecordFLibraries) }

func (rcv *PresetRecordF) Format() byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(presetRecordFFormat))
	if o != 0 {
		return rcv._tab.GetByte(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *PresetRecordF) SchemaVersion() uint16 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(presetRecordFSchemaVersion))
	if o != 0 {
		return rcv._tab.GetUint16(o + rcv._tab.Pos)
	}
	return 0
}

func PresetRecordFStart(builder *flatbuffers.Builder) {
	builder.StartObject(presetRecordFNumFields)
}

func PresetRecordFAddName(builder *flatbuffers.Builder, name flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(0, name, 0)
}

func PresetRecordFAddAuthor(builder *flatbuffers.Builder, author flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(1, author, 0)
}

func PresetRecordFAddDescription(builder *flatbuffers.Builder, description flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(2, description, 0)
}

func PresetRecordFAddTags(builder *flatbuffers.Builder, tags flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(3, tags, 0)
}

func PresetRecordFStartTagsVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}

func PresetRecordFAddLibraries(builder *flatbuffers.Builder, libraries flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(4, libraries, 0)
}

func PresetRecordFStartLibrariesVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}

func PresetRecordFAddFormat(builder *flatbuffers.Builder, format byte) {
	builder.PrependByteSlot(5, format, 0)
}

func PresetRecordFAddSchemaVersion(builder *flatbuffers.Builder, v uint16) {
	builder.PrependUint16Slot(6, v, 0)
}

func PresetRecordFEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
