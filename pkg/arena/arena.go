// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

// Package arena is a bump allocator for strings. Everything a preset folder
// indexes is copied into the folder's arena, so a folder's strings share a
// few large allocations and are released together when the folder is
// dropped.
package arena

import "unsafe"

// DefaultChunkSize is the size of each block an Arena carves strings from.
const DefaultChunkSize = 16 << 10

// Arena is not safe for concurrent use. Strings it returns stay valid after
// Reset; they are only released once nothing refers to them.
type Arena struct {
	chunkSize int
	cur       []byte
	chunks    int
	used      int
	reserved  int
}

// New returns an arena that allocates chunkSize bytes at a time. A
// non-positive chunkSize selects DefaultChunkSize.
func New(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Arena{chunkSize: chunkSize}
}

// Bytes returns n zeroed bytes from the arena.
func (a *Arena) Bytes(n int) []byte {
	if n == 0 {
		return nil
	}
	a.used += n
	// Big requests get their own block so they don't waste the current one.
	if n > a.chunkSize/4 {
		a.chunks++
		a.reserved += n
		return make([]byte, n)
	}
	if n > cap(a.cur)-len(a.cur) {
		a.cur = make([]byte, 0, a.chunkSize)
		a.chunks++
		a.reserved += a.chunkSize
	}
	start := len(a.cur)
	a.cur = a.cur[:start+n]
	return a.cur[start : start+n : start+n]
}

// String copies s into the arena.
func (a *Arena) String(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := a.Bytes(len(s))
	copy(b, s)
	return unsafe.String(&b[0], len(b))
}

// Strings copies every string of ss, and the slice itself, into the arena.
func (a *Arena) Strings(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = a.String(s)
	}
	return out
}

// Used returns the number of bytes handed out.
func (a *Arena) Used() int {
	return a.used
}

// Reserved returns the number of bytes allocated from the Go heap, which is
// at least Used.
func (a *Arena) Reserved() int {
	return a.reserved
}

// Chunks returns the number of blocks allocated.
func (a *Arena) Chunks() int {
	return a.chunks
}

// Reset forgets every block. Strings already returned keep their memory
// alive until they become unreachable.
func (a *Arena) Reset() {
	a.cur = nil
	a.chunks, a.used, a.reserved = 0, 0, 0
}
