// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import "sync/atomic"

// Mode is the state of the render context.
//
//	Idle   -> Active  entering an active window (owner only)
//	Active -> Idle    leaving it, on every exit path
//	any    -> Dead    the context was destroyed, terminal
type Mode int32

// Render context modes
const (
	Idle Mode = iota
	Active
	Dead
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// modeCell can be read from any goroutine, only the owner writes it.
type modeCell struct {
	v atomic.Int32
}

func (c *modeCell) Load() Mode {
	return Mode(c.v.Load())
}

func (c *modeCell) Store(m Mode) {
	c.v.Store(int32(m))
}

func (c *modeCell) CompareAndSwap(old, new Mode) bool {
	return c.v.CompareAndSwap(int32(old), int32(new))
}
