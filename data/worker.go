// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package data

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// maxEmptyReads bounds how many (0, nil) reads are tolerated in a row.
const maxEmptyReads = 100

// worker is the data loader's goroutine. It's the only user of the archive.
type worker struct {
	archive  Archive
	closer   io.Closer
	buf      []byte
	requests <-chan request
	done     chan<- struct{}
	inflight *atomic.Int32
}

// run serves requests until it's told to quit.
func (w *worker) run() {
	defer func() {
		if w.closer != nil {
			if err := w.closer.Close(); err != nil {
				log.Warnf("data loader failed to close archive: %v", err)
			}
		}
		close(w.done)
	}()

	for {
		req, ok := <-w.requests
		if !ok {
			log.Error("data loader request channel closed")
			return
		}
		if req.quit {
			w.drain()
			log.Debug("data loader stopped")
			return
		}
		w.serve(req.name, req.handler)
	}
}

// drain fails everything that got queued behind the quit request. It
// returns once the queue is empty and no Read can still get past the
// closed flag.
func (w *worker) drain() {
	for {
		senders := w.inflight.Load()
		select {
		case req := <-w.requests:
			if !req.quit {
				w.terminate(req.name, req.handler, fmt.Errorf("%s: %w", req.name, ErrDispatch))
			}
			continue
		default:
		}
		if senders == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// serve runs one request and keeps a misbehaving handler from taking down the worker.
func (w *worker) serve(name string, handler ReadHandler) {
	var terminated bool
	defer func() {
		if r := recover(); r != nil {
			log.WithField("entry", name).Errorf("handler panicked: %v", r)
			if !terminated {
				w.terminate(name, handler, fmt.Errorf("%s: %w: panic: %v", name, ErrHandler, r))
			}
		}
	}()
	w.load(name, handler, &terminated)
}

// terminate delivers an error as the terminal callback, swallowing a panic from it.
func (w *worker) terminate(name string, handler ReadHandler, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("entry", name).Errorf("error handler panicked: %v", r)
		}
	}()
	handler.OnError(err)
}

// load invokes the read handler in a loop for the named file.
func (w *worker) load(name string, handler ReadHandler, terminated *bool) {
	logger := log.WithField("entry", name)

	reader, err := w.archive.Open(name)
	if err != nil {
		*terminated = true
		handler.OnError(fmt.Errorf("%s: %w: %w", name, ErrOpen, err))
		return
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	empty := 0
	for {
		n, err := reader.Read(w.buf)
		if n > 0 {
			empty = 0
			if herr := handler.OnRead(w.buf[:n]); herr != nil {
				// The handler gave up on the file, it still gets its terminal callback.
				logger.Errorf("handler failed: %v", herr)
				*terminated = true
				handler.OnError(fmt.Errorf("%s: %w: %w", name, ErrHandler, herr))
				return
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			*terminated = true
			handler.OnError(fmt.Errorf("%s: %w: %w", name, ErrIO, err))
			return
		}
		if n == 0 {
			if empty++; empty >= maxEmptyReads {
				*terminated = true
				handler.OnError(fmt.Errorf("%s: %w: %w", name, ErrIO, io.ErrNoProgress))
				return
			}
		}
	}

	*terminated = true
	if err := handler.OnEOF(); err != nil {
		logger.Errorf("handler failed: %v", err)
	}
}
