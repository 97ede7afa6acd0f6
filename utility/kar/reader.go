// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pierrec/lz4"
)

// Open opens the kar archived from r. It will also check
// if the file is actually a kar archive, will return an error
// when file incorrect.
func Open(r io.ReaderAt) (*Archive, error) {
	magic := make([]byte, MagicLength)
	if num, err := r.ReadAt(magic, 0); num < MagicLength || !bytes.Equal(magic, Magic[:]) {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, ErrFileFormat
	}

	headerSizeBytes := make([]byte, HeaderSizeNumberLength)
	if num, err := r.ReadAt(headerSizeBytes, MagicLength); num < HeaderSizeNumberLength {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, ErrFileFormat
	}

	headerSize, err := binaryToint64(headerSizeBytes)
	if err != nil || headerSize <= 0 || headerSize > MaxHeaderSize {
		return nil, ErrFileFormat
	}
	if size, ok := sourceSize(r); ok && headerSize > size-MagicLength-HeaderSizeNumberLength {
		return nil, fmt.Errorf("%w: header of %d bytes in a %d byte file", ErrFileFormat, headerSize, size)
	}

	headerBytes := make([]byte, headerSize)
	if num, err := r.ReadAt(headerBytes, MagicLength+HeaderSizeNumberLength); int64(num) < headerSize {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, ErrFileFormat
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
	}

	ar := Archive{
		reader:     r,
		header:     header,
		index:      make(map[string]IndexEntry, len(header.Index)),
		dataOffset: MagicLength + HeaderSizeNumberLength + headerSize,
	}
	for _, e := range header.Index {
		if e.Offset < 0 || e.Size < 0 || e.CompressedSize < 0 {
			return nil, fmt.Errorf("%w: bad index entry %s", ErrFileFormat, e.Name)
		}
		ar.index[e.Name] = e
	}
	return &ar, nil
}

// sourceSize returns the length of r, if r can tell it.
func sourceSize(r io.ReaderAt) (int64, bool) {
	switch src := r.(type) {
	case interface{ Size() int64 }:
		return src.Size(), true
	case interface{ Len() int }:
		return int64(src.Len()), true
	}
	return 0, false
}

// Archive provides io for a kar file, and can provide
// an io.Reader for each file separately to perform actions on.
type Archive struct {
	reader     io.ReaderAt
	header     Header
	index      map[string]IndexEntry
	dataOffset int64
}

// Header returns the decoded archive header.
func (a *Archive) Header() Header {
	return a.header
}

// Names returns the sorted names of all files in the archive.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.index))
	for name := range a.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stat returns the index entry of the named file.
func (a *Archive) Stat(name string) (IndexEntry, error) {
	entry, ok := a.index[CleanName(name)]
	if !ok {
		return IndexEntry{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return entry, nil
}

// ReadAll returns the entire contents of a file with a given name
func (a *Archive) ReadAll(name string) ([]byte, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, r.Size()))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Open returns a Reader for a file in the Archive
func (a *Archive) Open(name string) (*Reader, error) {
	entry, err := a.Stat(name)
	if err != nil {
		return nil, err
	}
	section := io.NewSectionReader(a.reader, a.dataOffset+entry.Offset, entry.CompressedSize)
	return &Reader{
		entry:  entry,
		source: lz4.NewReader(section),
	}, nil
}

// Reader is a reader for a single file in an Archive.
// Abstracts away the location that needs to be known.
type Reader struct {
	entry  IndexEntry
	source io.Reader
	read   int64
}

// Size returns the decompressed size of the file.
func (r *Reader) Size() int64 {
	return r.entry.Size
}

// Read reads already decompressed data
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.read == r.entry.Size {
		return 0, io.EOF
	}
	if remaining := r.entry.Size - r.read; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = r.source.Read(p)
	r.read += int64(n)
	if err == io.EOF {
		if r.read < r.entry.Size {
			return n, fmt.Errorf("%s: %w: %v", r.entry.Name, ErrIOMisc, io.ErrUnexpectedEOF)
		}
		err = nil
	}
	if err != nil {
		return n, fmt.Errorf("%s: %w: %v", r.entry.Name, ErrIOMisc, err)
	}
	return n, nil
}
