// Copyright (c) 2015 Western Digital Corporation or its affiliates.  All rights reserved.
// SPDX-License-Identifier: MIT

package core

import (
	"errors"
	"io/fs"
)

// Error is the kind of failure surfaced by the preset core. It converts to a
// Go error with Error() and can be recovered from one with FromError.
type Error int

const (
	// NoError means no error.
	NoError = Error(iota)

	//------ Preset file errors ------//

	// ErrInvalidFileFormat is returned when a file has an unknown magic or
	// version, or when a legacy text preset fails to parse.
	ErrInvalidFileFormat

	// ErrCorruptData is returned when a length prefix points past the end of
	// the data, or when a discriminator or count is inconsistent.
	ErrCorruptData

	// ErrUnsupportedFileType is returned for a file extension that no decoder
	// handles.
	ErrUnsupportedFileType

	//------ Scanning errors ------//

	// ErrFolderContainsTooManyFiles is reported when a scan goes deeper than the
	// maximum folder depth. The folder tree is truncated at that depth.
	ErrFolderContainsTooManyFiles

	// ErrIO is returned if there is an OS-level IO error.
	ErrIO

	// ErrFileNotFound is returned when a file or folder doesn't exist.
	ErrFileNotFound

	//------ Meta-error ------//

	// ErrInvalidArgument is returned if an argument is bad or confusing.
	ErrInvalidArgument

	// ErrProgrammer means that the built-in schema tables disagree with a
	// shipped preset: an unknown legacy parameter name, an unknown menu string
	// for a known menu parameter, or an unknown layer type. The tables must be
	// fixed.
	ErrProgrammer
)

var description = map[Error]string{
	NoError: "no error",

	ErrInvalidFileFormat:   "invalid file format",
	ErrCorruptData:         "preset data is corrupt",
	ErrUnsupportedFileType: "unsupported file type",

	ErrFolderContainsTooManyFiles: "folder contains too many files or is nested too deeply",
	ErrIO:                         "I/O level error",
	ErrFileNotFound:               "file was not found",

	ErrInvalidArgument: "invalid argument",
	ErrProgrammer:      "schema tables are inconsistent with the preset, this is a bug",
}

// String returns a human readable error message.
func (e Error) String() string {
	if s, ok := description[e]; ok {
		return s
	}
	return "NO DESCRIPTION FOR ERROR FIX THIS"
}

// Error returns a golang error object with an error message corresponding to
// this core.Error.
func (e Error) Error() error {
	if e == NoError {
		return nil
	}
	return goError(e)
}

// Is checks whether the generic Go error 'g' is actually the receiver error
// underneath, looking through wrapping.
func (e Error) Is(g error) bool {
	var b goError
	return errors.As(g, &b) && Error(b) == e
}

// goError is a wrapper type to make our Error act like Go's 'error'
type goError Error

// Error implements the 'error' interface.
func (g goError) Error() string {
	return (Error)(g).String()
}

// FromError gets the underlying core.Error from an error. Errors that didn't
// originate here are classified: missing files become ErrFileNotFound and
// anything else from the OS becomes ErrIO.
func FromError(err error) Error {
	if err == nil {
		return NoError
	}
	var g goError
	if errors.As(err, &g) {
		return Error(g)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ErrFileNotFound
	}
	return ErrIO
}
