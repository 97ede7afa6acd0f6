// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package data

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/devblok/arena/core"
	"github.com/devblok/arena/utility/kar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

// Archive is a randomly addressable set of named files.
// The loader only ever uses it from its worker goroutine.
type Archive interface {

	// Open returns a reader for the named file, or an error if
	// there is no such file.
	Open(name string) (io.Reader, error)
}

type karArchive struct {
	*kar.Archive
}

func (a karArchive) Open(name string) (io.Reader, error) {
	return a.Archive.Open(name)
}

// Open maps the kar archive at path and starts a Loader for it.
// An empty path means DefaultPath.
func Open(path string, cfg core.DataConfiguration) (*Loader, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	log.Debugf("loading data from: %s", path)

	file, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrOpen, err)
	}
	ar, err := kar.Open(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: open archive failed: %w: %w", path, ErrOpen, err)
	}

	loader := NewLoader(karArchive{ar}, file, cfg)
	return loader, nil
}

// NewLoader starts the worker goroutine for ar. The worker owns ar and closes
// closer (if not nil) once it stops.
func NewLoader(ar Archive, closer io.Closer, cfg core.DataConfiguration) *Loader {
	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = core.DefaultConfiguration.Data.BufferSize
	}
	queueSize := cfg.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}

	l := &Loader{
		requests: make(chan request, queueSize),
		done:     make(chan struct{}),
	}
	w := &worker{
		archive:  ar,
		closer:   closer,
		buf:      make([]byte, bufSize),
		requests: l.requests,
		done:     l.done,
		inflight: &l.inflight,
	}
	go w.run()
	return l
}

// Loader loads data from the game's data archive in a worker goroutine.
type Loader struct {
	requests chan request
	done     chan struct{}

	// inflight counts Read calls between their closed check and their send,
	// the worker keeps draining until it drops to zero.
	inflight  atomic.Int32
	closed    atomic.Bool
	closeOnce sync.Once
}

// Read reads the named file, the handler is invoked in a loop until
// reading is finished. It only blocks when the request queue is full.
// Fails with ErrDispatch when the loader is closed or its worker has stopped,
// the handler is not called in that case.
func (l *Loader) Read(name string, handler ReadHandler) error {
	l.inflight.Add(1)
	defer l.inflight.Add(-1)

	if l.closed.Load() {
		return fmt.Errorf("%s: open request failed: %w", name, ErrDispatch)
	}
	select {
	case <-l.done:
		return fmt.Errorf("%s: open request failed: %w", name, ErrDispatch)
	default:
	}

	select {
	case l.requests <- request{name: name, handler: handler}:
		return nil
	case <-l.done:
		return fmt.Errorf("%s: open request failed: %w", name, ErrDispatch)
	}
}

// ReadAll reads the whole named file and hands it to the handler at once.
// A file larger than maxLen fails with ErrSizeExceeded, NoLimit disables the check.
func (l *Loader) ReadAll(name string, handler ReadAllHandler, maxLen int) error {
	return l.Read(name, newReadAllWrapper(handler, maxLen))
}

// Done returns a channel that is closed once the worker has stopped.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Close asks the worker to stop after the requests already sent.
// It does not wait for it.
func (l *Loader) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		quit := request{quit: true}
		select {
		case l.requests <- quit:
		case <-l.done:
		default:
			// the queue is full, don't hold up the caller
			go func() {
				select {
				case l.requests <- quit:
				case <-l.done:
				}
			}()
		}
	})
	return nil
}

// request is a message sent to the worker goroutine.
type request struct {
	name    string
	handler ReadHandler
	quit    bool
}
