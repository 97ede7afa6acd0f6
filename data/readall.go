// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package data

import "fmt"

const minReadAllCapacity = 512

// readAllWrapper collects the streamed chunks of a file for a ReadAllHandler.
type readAllWrapper struct {
	data   []byte
	inner  ReadAllHandler
	maxLen int
}

func newReadAllWrapper(inner ReadAllHandler, maxLen int) *readAllWrapper {
	return &readAllWrapper{
		inner:  inner,
		maxLen: maxLen,
	}
}

func (w *readAllWrapper) OnError(err error) {
	w.inner.OnError(err)
}

func (w *readAllWrapper) OnEOF() error {
	if w.data == nil {
		w.data = []byte{}
	}
	return w.inner.OnReadAll(w.data)
}

func (w *readAllWrapper) OnRead(p []byte) error {
	// only the incoming chunk is checked against what's left
	if w.maxLen >= 0 && len(p) > w.maxLen-len(w.data) {
		return fmt.Errorf("%w: limit is %d bytes", ErrSizeExceeded, w.maxLen)
	}
	w.grow(len(p))
	w.data = append(w.data, p...)
	return nil
}

// grow makes room for n more bytes without ever going over maxLen.
func (w *readAllWrapper) grow(n int) {
	need := len(w.data) + n
	if need <= cap(w.data) {
		return
	}
	size := 2 * cap(w.data)
	if size < minReadAllCapacity {
		size = minReadAllCapacity
	}
	if size < need {
		size = need
	}
	if w.maxLen >= 0 && size > w.maxLen {
		size = w.maxLen
	}
	buf := make([]byte, len(w.data), size)
	copy(buf, w.data)
	w.data = buf
}
