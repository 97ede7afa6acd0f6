// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package data

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllWrapperNeverAllocatesPastLimit(t *testing.T) {
	var got []byte
	w := newReadAllWrapper(ReadAllFuncs{Done: func(p []byte) error {
		got = p
		return nil
	}}, 1000)

	chunk := make([]byte, 100)
	for i := 0; i < 10; i++ {
		require.NoError(t, w.OnRead(chunk))
		assert.LessOrEqual(t, cap(w.data), 1000)
	}
	err := w.OnRead([]byte{1})
	assert.True(t, errors.Is(err, ErrSizeExceeded))
	assert.Len(t, w.data, 1000)

	require.NoError(t, w.OnEOF())
	assert.Len(t, got, 1000)
}

func TestReadAllWrapperChecksOnlyIncomingChunk(t *testing.T) {
	w := newReadAllWrapper(ReadAllFuncs{}, 10)

	require.NoError(t, w.OnRead(make([]byte, 6)))
	err := w.OnRead(make([]byte, 6))
	assert.True(t, errors.Is(err, ErrSizeExceeded))
	// the rejected chunk is not kept
	assert.Len(t, w.data, 6)
	require.NoError(t, w.OnRead(make([]byte, 4)))
	assert.Len(t, w.data, 10)
	assert.Equal(t, 10, cap(w.data))
}

func TestReadAllWrapperUnlimited(t *testing.T) {
	w := newReadAllWrapper(ReadAllFuncs{}, NoLimit)
	for i := 0; i < 100; i++ {
		require.NoError(t, w.OnRead(make([]byte, 1024)))
	}
	assert.Len(t, w.data, 100*1024)
}

func TestReadAllWrapperForwardsErrors(t *testing.T) {
	var got error
	w := newReadAllWrapper(ReadAllFuncs{Fail: func(err error) { got = err }}, NoLimit)
	w.OnError(ErrIO)
	assert.Equal(t, ErrIO, got)
}
