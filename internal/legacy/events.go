// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/westerndigitalcorporation/floe/internal/core"
)

// EventKind is what a JSON event carries.
type EventKind uint8

const (
	// HandlingStarted opens an object or an array.
	HandlingStarted EventKind = iota
	// HandlingEnded closes the object or array opened last.
	HandlingEnded
	EventString
	EventDouble
	EventInt
	EventBool
	EventNull
)

// Event is one step of a JSON document. Path holds the keys of the enclosing
// containers below the top-level object, with "" for array elements; Key is the
// key of this value in its parent, or "" inside an array. Values directly in
// the top-level object have an empty Path.
type Event struct {
	Kind   EventKind
	Path   []string
	Key    string
	String string
	Double float64
	Int    int64
	Bool   bool
}

// In reports whether the event's enclosing path is exactly path.
func (e *Event) In(path ...string) bool {
	if len(e.Path) != len(path) {
		return false
	}
	for i := range path {
		if e.Path[i] != path[i] {
			return false
		}
	}
	return true
}

// Handler consumes events. Returning an error stops the parse.
type Handler func(ev *Event) error

type frame struct {
	object    bool
	key       string // key of the value being read, in objects
	expectKey bool
}

// ParseEvents pushes every value of a JSON document through h. The document
// must be an object. Syntax errors carry core.ErrInvalidFileFormat.
func ParseEvents(data []byte, h Handler) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var stack []frame
	var path []string
	done := false
	syntax := func(err error) error {
		return fmt.Errorf("%w: %s", core.ErrInvalidFileFormat.Error(), err)
	}
	// parentKey is the key of the innermost open container's current value.
	parentKey := func() string {
		if n := len(stack); n > 0 && stack[n-1].object {
			return stack[n-1].key
		}
		return ""
	}
	closeContainer := func() error {
		if len(stack) > 1 {
			path = path[:len(path)-1]
		}
		stack = stack[:len(stack)-1]
		if err := h(&Event{Kind: HandlingEnded, Path: path, Key: parentKey()}); err != nil {
			return err
		}
		valueDone(stack)
		done = len(stack) == 0
		return nil
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if !done {
				return syntax(io.ErrUnexpectedEOF)
			}
			return nil
		}
		if err != nil {
			return syntax(err)
		}
		if done {
			return syntax(fmt.Errorf("data after the top-level object"))
		}
		if len(stack) == 0 && tok != json.Delim('{') {
			return syntax(fmt.Errorf("top level is not an object"))
		}

		if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectKey {
			if tok == json.Delim('}') {
				if err := closeContainer(); err != nil {
					return err
				}
				continue
			}
			stack[n-1].key = tok.(string)
			stack[n-1].expectKey = false
			continue
		}

		key := parentKey()
		ev := Event{Path: path, Key: key}
		switch t := tok.(type) {
		case json.Delim:
			if t == ']' {
				if err := closeContainer(); err != nil {
					return err
				}
				continue
			}
			ev.Kind = HandlingStarted
			if err := h(&ev); err != nil {
				return err
			}
			if len(stack) > 0 {
				path = append(path[:len(path):len(path)], key)
			}
			stack = append(stack, frame{object: t == '{', expectKey: t == '{'})
			continue
		case string:
			ev.Kind = EventString
			ev.String = t
		case json.Number:
			if i, err := t.Int64(); err == nil {
				ev.Kind = EventInt
				ev.Int = i
				ev.Double = float64(i)
			} else {
				f, err := t.Float64()
				if err != nil {
					return syntax(err)
				}
				ev.Kind = EventDouble
				ev.Double = f
			}
		case bool:
			ev.Kind = EventBool
			ev.Bool = t
		case nil:
			ev.Kind = EventNull
		}
		if err := h(&ev); err != nil {
			return err
		}
		valueDone(stack)
	}
}

// valueDone marks that the enclosing object's current value has been read.
func valueDone(stack []frame) {
	if n := len(stack); n > 0 && stack[n-1].object {
		stack[n-1].expectKey = true
	}
}
