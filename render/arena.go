// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"fmt"
	"sync"
)

type kind uint8

const (
	kindShader kind = iota + 1
	kindProgram
	kindBuffer
)

func (k kind) String() string {
	switch k {
	case kindShader:
		return "shader"
	case kindProgram:
		return "shader program"
	case kindBuffer:
		return "buffer"
	default:
		return "resource"
	}
}

// Handle refers to a context-bound object. A handle outlives its object
// safely, it simply stops resolving once the object is released.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero tells if the handle was never assigned.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("#%d.%d", h.index, h.generation)
}

// destroyMessage tells the context thread which raw object to delete.
type destroyMessage struct {
	kind kind
	id   uint32
}

type slot struct {
	kind       kind
	id         uint32
	generation uint32
	refs       int32
	deps       []Handle
}

// arena is the table of live context-bound objects. Raw ids never leave it
// except inside a destroyMessage or for a call on the context thread.
type arena struct {
	mutex sync.Mutex
	slots []slot
	free  []uint32
}

// insert stores a freshly created object with one reference.
func (a *arena) insert(k kind, id uint32) Handle {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot{generation: 1})
	}

	s := &a.slots[index]
	s.kind = k
	s.id = id
	s.refs = 1
	s.deps = nil
	return Handle{index: index, generation: s.generation}
}

// lookup returns the slot behind h, nil if h has expired. Must hold the lock.
func (a *arena) lookup(h Handle) *slot {
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if s.generation != h.generation || s.id == 0 {
		return nil
	}
	return s
}

// id returns the raw id behind h, 0 once it has expired.
func (a *arena) id(h Handle) uint32 {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if s := a.lookup(h); s != nil {
		return s.id
	}
	return 0
}

// retain adds a reference to h.
func (a *arena) retain(h Handle) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	s := a.lookup(h)
	if s == nil {
		return false
	}
	s.refs++
	return true
}

// depend makes owner hold a reference to dep until owner is destroyed.
func (a *arena) depend(owner, dep Handle) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	o, d := a.lookup(owner), a.lookup(dep)
	if o == nil || d == nil {
		return false
	}
	d.refs++
	o.deps = append(o.deps, dep)
	return true
}

// release drops a reference to h. When the last one goes, the slot expires
// and the objects that have to be deleted are returned, dependencies after
// their owner.
func (a *arena) release(h Handle) []destroyMessage {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var (
		messages []destroyMessage
		next     = []Handle{h}
	)
	for len(next) > 0 {
		h, next = next[0], next[1:]
		s := a.lookup(h)
		if s == nil {
			continue
		}
		if s.refs--; s.refs > 0 {
			continue
		}
		messages = append(messages, destroyMessage{kind: s.kind, id: s.id})
		next = append(next, s.deps...)

		s.id = 0
		s.deps = nil
		s.generation++
		if s.generation == 0 {
			s.generation = 1
		}
		a.free = append(a.free, h.index)
	}
	return messages
}

// live returns the number of live objects.
func (a *arena) live() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return len(a.slots) - len(a.free)
}
