// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/devblok/arena/data"
)

var errAbandoned = errors.New("load barrier abandoned")

// Reader is the part of the data loader a Barrier needs.
type Reader interface {
	ReadAll(name string, handler data.ReadAllHandler, maxLen int) error

	// Done is closed once no more responses can arrive.
	Done() <-chan struct{}
}

// NewBarrier creates a Barrier reading through reader, files larger
// than maxLen fail.
func NewBarrier(reader Reader, maxLen int) *Barrier {
	return &Barrier{
		reader:    reader,
		maxLen:    maxLen,
		pending:   make(map[Handle]string),
		responses: newResponseQueue(),
	}
}

// Barrier waits for a set of asynchronous reads, building each resource
// as its data arrives. The first failure ends the wait.
type Barrier struct {
	reader    Reader
	maxLen    int
	pending   map[Handle]string
	responses *responseQueue
	closed    bool
}

// loadResponse is what a finished read sends back to the barrier,
// either a payload or an error.
type loadResponse struct {
	key     Handle
	name    string
	payload []byte
	err     error
}

// responseQueue grows with the responses, so the loader never waits on
// a barrier that hasn't started collecting yet.
type responseQueue struct {
	mutex     sync.Mutex
	items     []loadResponse
	abandoned bool
	ready     chan struct{}
}

func newResponseQueue() *responseQueue {
	return &responseQueue{ready: make(chan struct{}, 1)}
}

func (q *responseQueue) push(resp loadResponse) error {
	q.mutex.Lock()
	if q.abandoned {
		q.mutex.Unlock()
		return errAbandoned
	}
	q.items = append(q.items, resp)
	q.mutex.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

func (q *responseQueue) pop() (loadResponse, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.items) == 0 {
		return loadResponse{}, false
	}
	resp := q.items[0]
	q.items[0] = loadResponse{}
	q.items = q.items[1:]
	return resp, true
}

// abandon drops what's queued and refuses anything sent later.
func (q *responseQueue) abandon() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.abandoned = true
	q.items = nil
}

// Add requests the named file for the resource identified by key.
func (b *Barrier) Add(name string, key Handle) error {
	if b.closed {
		return fmt.Errorf("%s: %w", name, errAbandoned)
	}
	if _, ok := b.pending[key]; ok {
		return fmt.Errorf("%s: resource %s already pending", name, key)
	}

	b.pending[key] = name
	handler := barrierHandler{
		key:       key,
		name:      name,
		responses: b.responses,
	}
	if err := b.reader.ReadAll(name, handler, b.maxLen); err != nil {
		delete(b.pending, key)
		return err
	}
	return nil
}

// Len returns the number of reads still pending.
func (b *Barrier) Len() int {
	return len(b.pending)
}

// Wait collects responses until nothing is pending, calling build for every
// payload in arrival order. It returns the first load or build error, the
// responses still outstanding at that point are never looked at.
func (b *Barrier) Wait(build func(key Handle, name string, payload []byte) error) error {
	defer b.close()

	for len(b.pending) > 0 {
		resp, ok := b.responses.pop()
		if !ok {
			select {
			case <-b.responses.ready:
				continue
			case <-b.reader.Done():
				// anything sent before the loader stopped is already queued
				if resp, ok = b.responses.pop(); !ok {
					return fmt.Errorf("%w: %d outstanding", ErrChannelClosed, len(b.pending))
				}
			}
		}

		if resp.err != nil {
			return resp.err
		}

		name, ok := b.pending[resp.key]
		if !ok {
			return fmt.Errorf("%s: response for unknown resource %s", resp.name, resp.key)
		}
		delete(b.pending, resp.key)

		if err := build(resp.key, name, resp.payload); err != nil {
			return &BuildError{Name: name, Err: err}
		}
	}
	return nil
}

func (b *Barrier) close() {
	if !b.closed {
		b.closed = true
		b.responses.abandon()
	}
}

// barrierHandler carries the key and name of a read, never the resource itself.
type barrierHandler struct {
	key       Handle
	name      string
	responses *responseQueue
}

func (h barrierHandler) OnReadAll(payload []byte) error {
	return h.send(loadResponse{key: h.key, name: h.name, payload: payload})
}

func (h barrierHandler) OnError(err error) {
	h.send(loadResponse{key: h.key, name: h.name, err: err})
}

func (h barrierHandler) send(resp loadResponse) error {
	return h.responses.push(resp)
}
