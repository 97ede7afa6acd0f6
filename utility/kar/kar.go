// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package kar is an api for an lz4 backed file format.
// It's purpose is to be well suited for resource streaming resources
// from it. It knows where all the files are located before they're read,
// so unlike tar it can be randomly addressed. The archive itself is not
// compressed in any form, rather every file is individually compressed,
// so it could be immediately read from it's place and decompressed on the fly.
// This somewhat compromises space efficiency, but space efficiency is not the
// primary goal of this package. It instead focuses on getting resources from
// disk to a usable state as fast as possible.
//
// An Archive is not safe for concurrent use through a single Reader, but
// separate Readers opened from the same Archive may be used from different
// goroutines as long as the underlying io.ReaderAt allows it.
package kar

import (
	"errors"
	"path"
	"strings"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a kar archive")
	ErrNotFound   = errors.New("file not found in archive")
	ErrDuplicate  = errors.New("file already present in archive")
	ErrTempFail   = errors.New("temporary folder or file operation failed")
	ErrIOMisc     = errors.New("some unknown error unhandled by the io occured")
)

// Sizes relevant to the header of file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 16

	// MaxHeaderSize bounds the encoded header, anything bigger is
	// taken as a corrupt size field.
	MaxHeaderSize = 64 * 1024 * 1024
)

// Magic identifies a kar archive, it's the first thing in the file.
var Magic = [MagicLength]byte{'K', 'A', 'R', '\x00'}

// IndexEntry is info for one file in the file index.
// Offset is counted from the start of the data section,
// which directly follows the encoded Header.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the file header for kar files.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

// MaxExpectedSize calculates the amount of space a Header could take.
// It only needs to be roughtly correct, it's used to sanity check
// the header size read from a file.
func (h *Header) MaxExpectedSize() int64 {
	var size int64
	size += int64(len(h.Author))
	size += 16 // DataCreated + Version
	size += 60 // Names etc
	for _, e := range h.Index {
		size += int64(len(e.Name))
		size += 24 // numbers
		size += 60
	}
	return size
}

// CleanName normalises an entry name to a slash separated
// virtual path without a leading slash.
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean("/" + name)
	return strings.TrimPrefix(name, "/")
}
