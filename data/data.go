// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package data loads files from the game's data archive in a worker goroutine.
//
// Requests are served strictly one at a time in the order they were sent.
// Every request ends with exactly one terminal callback: OnEOF (or OnReadAll
// for buffered reads) on success, OnError otherwise. OnRead may be called any
// number of times before that. A handler is owned by the loader from the
// moment it's handed over until its terminal callback returns.
package data

import "errors"

// package errors
var (
	ErrOpen         = errors.New("open failed")
	ErrIO           = errors.New("read failed")
	ErrSizeExceeded = errors.New("maximum file size exceeded")
	ErrDispatch     = errors.New("data loader is not running")
	ErrHandler      = errors.New("handler failed")
)

// DataFilename is the name of the data archive next to the executable.
const DataFilename = "arena.kar"

// NoLimit disables the size bound of ReadAll.
const NoLimit = -1

// ErrorHandler responds to asynchronous errors.
type ErrorHandler interface {
	OnError(err error)
}

// ReadHandler responds to asynchronous read events.
// The slice given to OnRead is only valid until OnRead returns.
type ReadHandler interface {
	ErrorHandler

	OnRead(p []byte) error
	OnEOF() error
}

// ReadAllHandler responds to the reading of an entire file.
type ReadAllHandler interface {
	ErrorHandler

	OnReadAll(data []byte) error
}

// ReadAllFuncs adapts a pair of functions to ReadAllHandler.
type ReadAllFuncs struct {
	Done func(data []byte) error
	Fail func(err error)
}

// OnReadAll implements ReadAllHandler
func (f ReadAllFuncs) OnReadAll(data []byte) error {
	if f.Done == nil {
		return nil
	}
	return f.Done(data)
}

// OnError implements ErrorHandler
func (f ReadAllFuncs) OnError(err error) {
	if f.Fail != nil {
		f.Fail(err)
	}
}
