// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/pierrec/lz4"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway.
func NewBuilder(header Header) (*Builder, error) {
	temp, err := os.MkdirTemp("", "karBuilder")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempFail, err)
	}
	builder := &Builder{
		tempDir: temp,
		header:  header,
	}
	runtime.SetFinalizer(builder, func(builder *Builder) {
		os.RemoveAll(builder.tempDir)
	})
	return builder, nil
}

type tempFile struct {

	// Name is the actual name of the file
	Name string

	// TempName is the temporary file holding the compressed data
	TempName string

	// Size in decompressed state
	Size int64

	Compressed int64
}

// Builder is the high level builder for the archive format.
// Arhives are versioned and cannot be appended to, This Builder
// is the way to create an archive. Whenever Add is called, Builder
// will store the compressed file in a temporary dir, then finally
// bundle them togeter and write them out with WriteTo.
type Builder struct {
	tempDir string
	header  Header

	mutex sync.Mutex
	files []tempFile
	names map[string]struct{}
}

// Add appends data to the builder with a given name.
// Will block until lz4 finishes compression. Is safe
// to use concurrently in different goroutines.
func (b *Builder) Add(name string, r io.Reader) error {
	name = CleanName(name)

	f, err := os.CreateTemp(b.tempDir, "entry")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTempFail, err)
	}
	defer f.Close()

	writer := lz4.NewWriter(f)
	written, err := io.Copy(writer, r)
	if err != nil {
		return fmt.Errorf("%s: compression failed: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: compression failed: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if _, ok := b.names[name]; ok {
		os.Remove(f.Name())
		return fmt.Errorf("%s: %w", name, ErrDuplicate)
	}
	if b.names == nil {
		b.names = make(map[string]struct{})
	}
	b.names[name] = struct{}{}
	b.files = append(b.files, tempFile{
		Name:       name,
		TempName:   f.Name(),
		Size:       written,
		Compressed: info.Size(),
	})
	return nil
}

// Len returns the number of files added so far.
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.files)
}

// WriteTo bundles and writes all of the files added to the Builder
// into a kar archive that is ready to use.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = nil
	var offset int64
	for _, v := range b.files {
		header.Index = append(header.Index, IndexEntry{
			Name:           v.Name,
			Size:           v.Size,
			CompressedSize: v.Compressed,
			Offset:         offset,
		})
		offset += v.Compressed
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, chunk := range [][]byte{Magic[:], int64ToBinary(int64(len(rawHeader))), rawHeader} {
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	for _, v := range b.files {
		n, err := copyFile(w, v.TempName)
		total += n
		if err != nil {
			return total, fmt.Errorf("%s: %w", v.Name, err)
		}
	}
	return total, nil
}

// Close removes the temporary files of the Builder.
// The Builder cannot be used after.
func (b *Builder) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.files = nil
	b.names = nil
	runtime.SetFinalizer(b, nil)
	return os.RemoveAll(b.tempDir)
}

func copyFile(w io.Writer, name string) (int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTempFail, err)
	}
	defer f.Close()
	return io.Copy(w, f)
}
