// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package render owns the graphics context and everything bound to it.
//
// Context-bound work never runs outside of an active window on the thread
// that owns the context. Anything else, from any goroutine, goes through the
// Dispatcher, which runs it right away when that is allowed and queues it
// for the next active window when it isn't.
package render

import (
	"errors"
)

// package errors
var (
	ErrRecursiveActivation = errors.New("recursive rendering")
	ErrContextDead         = errors.New("render context destroyed")
	ErrNotActive           = errors.New("render context is not active on this thread")
	ErrChannelClosed       = errors.New("data loader stopped with reads pending")
	ErrBuild               = errors.New("build failed")
	ErrExpired             = errors.New("expired")
)

// BuildError is a failure to compile or link a named resource.
type BuildError struct {
	Name string
	Err  error
}

func (e *BuildError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

// Unwrap makes both ErrBuild and the cause matchable.
func (e *BuildError) Unwrap() []error {
	return []error{ErrBuild, e.Err}
}
