// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/westerndigitalcorporation/floe/internal/core"
)

// Mode selects the direction of a coder.
type Mode uint8

const (
	ModeDecode Mode = iota
	ModeEncode
)

// ReadOrWriteFunc moves len(p) bytes between p and the underlying stream: it
// fills p when decoding and consumes p when encoding. A short stream while
// decoding must return an error that carries core.ErrCorruptData.
type ReadOrWriteFunc func(p []byte) error

// coder runs the same field sequence in both directions, so the layout is
// written down once. After the first failure every call is a no-op and err
// holds the failure.
type coder struct {
	mode Mode
	rw   ReadOrWriteFunc
	buf  [8]byte
	err  error
}

func (c *coder) decoding() bool {
	return c.mode == ModeDecode
}

func (c *coder) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *coder) corrupt(format string, args ...interface{}) {
	c.fail(fmt.Errorf("%w: %s", core.ErrCorruptData.Error(), fmt.Sprintf(format, args...)))
}

func (c *coder) bytes(p []byte) {
	if c.err != nil {
		return
	}
	if err := c.rw(p); err != nil {
		c.fail(err)
	}
}

func (c *coder) u8(v *uint8) {
	b := c.buf[:1]
	if !c.decoding() {
		b[0] = *v
	}
	c.bytes(b)
	if c.decoding() && c.err == nil {
		*v = b[0]
	}
}

func (c *coder) u16(v *uint16) {
	b := c.buf[:2]
	if !c.decoding() {
		binary.LittleEndian.PutUint16(b, *v)
	}
	c.bytes(b)
	if c.decoding() && c.err == nil {
		*v = binary.LittleEndian.Uint16(b)
	}
}

func (c *coder) u32(v *uint32) {
	b := c.buf[:4]
	if !c.decoding() {
		binary.LittleEndian.PutUint32(b, *v)
	}
	c.bytes(b)
	if c.decoding() && c.err == nil {
		*v = binary.LittleEndian.Uint32(b)
	}
}

func (c *coder) f32(v *float32) {
	u := math.Float32bits(*v)
	c.u32(&u)
	if c.decoding() && c.err == nil {
		*v = math.Float32frombits(u)
	}
}

func (c *coder) boolean(v *bool) {
	var b uint8
	if *v {
		b = 1
	}
	c.u8(&b)
	if c.decoding() && c.err == nil {
		if b > 1 {
			c.corrupt("bool byte %d", b)
			return
		}
		*v = b == 1
	}
}

// str codes a u16 length-prefixed string of at most max bytes.
func (c *coder) str(v *string, max int, what string) {
	if !c.decoding() && len(*v) > max {
		c.fail(fmt.Errorf("%w: %s is %d bytes, max %d", core.ErrInvalidArgument.Error(), what, len(*v), max))
		return
	}
	n := uint16(len(*v))
	c.u16(&n)
	if c.err != nil {
		return
	}
	if int(n) > max {
		c.corrupt("%s length %d above %d", what, n, max)
		return
	}
	if !c.decoding() {
		c.bytes([]byte(*v))
		return
	}
	b := make([]byte, n)
	c.bytes(b)
	if c.err == nil {
		*v = string(b)
	}
}

// count codes a u8 element count bounded by max.
func (c *coder) count(n *int, max int, what string) {
	if !c.decoding() && *n > max {
		c.fail(fmt.Errorf("%w: %d %s, max %d", core.ErrInvalidArgument.Error(), *n, what, max))
		return
	}
	v := uint8(*n)
	c.u8(&v)
	if c.decoding() && c.err == nil {
		if int(v) > max {
			c.corrupt("%d %s, max %d", v, what, max)
			return
		}
		*n = int(v)
	}
}

// MemoryReader returns a ReadOrWriteFunc that decodes from data.
func MemoryReader(data []byte) ReadOrWriteFunc {
	return func(p []byte) error {
		if len(p) > len(data) {
			return fmt.Errorf("%w: need %d bytes, %d left", core.ErrCorruptData.Error(), len(p), len(data))
		}
		copy(p, data)
		data = data[len(p):]
		return nil
	}
}

// StreamReader returns a ReadOrWriteFunc that decodes from r.
func StreamReader(r io.Reader) ReadOrWriteFunc {
	return func(p []byte) error {
		if _, err := io.ReadFull(r, p); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return fmt.Errorf("%w: unexpected end of data", core.ErrCorruptData.Error())
			}
			return err
		}
		return nil
	}
}

// StreamWriter returns a ReadOrWriteFunc that encodes to w.
func StreamWriter(w io.Writer) ReadOrWriteFunc {
	return func(p []byte) error {
		_, err := w.Write(p)
		return err
	}
}
