// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/devblok/arena/gfx"
	log "github.com/sirupsen/logrus"
)

// Job is a piece of context-bound work.
type Job func(ctx gfx.Context) error

// NewDispatcher creates an idle Dispatcher for ctx.
func NewDispatcher(ctx gfx.Context) *Dispatcher {
	return &Dispatcher{
		ctx: ctx,
	}
}

// Dispatcher runs jobs at a time determined by the mode of the render context.
//
// If the context is active on the calling thread, jobs are executed
// immediately. Otherwise, jobs are executed the next time the context is
// active. If the context is destroyed, jobs are discarded.
type Dispatcher struct {
	ctx   gfx.Context
	mode  modeCell
	owner atomic.Uint64

	mutex sync.Mutex
	queue []Job
}

// Mode returns the current mode of the context.
func (d *Dispatcher) Mode() Mode {
	return d.mode.Load()
}

// Pending returns the number of queued jobs.
func (d *Dispatcher) Pending() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.queue)
}

// Dispatch pushes or executes the specified job. Only a job executed right
// away can fail, queued and discarded jobs always succeed.
func (d *Dispatcher) Dispatch(job Job) error {
	switch d.mode.Load() {
	case Active:
		if d.onOwnerThread() {
			return job(d.ctx)
		}
	case Dead:
		return nil
	}
	d.push(job)
	return nil
}

// Exec runs job right away if the context is active on the calling thread,
// and fails with ErrNotActive otherwise. Nothing is queued.
func (d *Dispatcher) Exec(job Job) error {
	switch d.mode.Load() {
	case Active:
		if d.onOwnerThread() {
			return job(d.ctx)
		}
	case Dead:
		return ErrContextDead
	}
	return ErrNotActive
}

// Run makes the context current, enters the active window, executes all
// pending jobs and then fn. The context goes back to idle however Run is
// left, including a panic in fn or in a job.
func (d *Dispatcher) Run(fn func(ctx gfx.Context) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	switch d.mode.Load() {
	case Active:
		return ErrRecursiveActivation
	case Dead:
		return ErrContextDead
	}

	if err := d.ctx.MakeCurrent(); err != nil {
		return err
	}

	if !d.mode.CompareAndSwap(Idle, Active) {
		if d.mode.Load() == Dead {
			return ErrContextDead
		}
		return ErrRecursiveActivation
	}
	d.owner.Store(currentThread())
	defer d.release()

	d.drain()
	return fn(d.ctx)
}

// Kill marks the context as dead and discards every queued job.
func (d *Dispatcher) Kill() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.mode.Store(Dead)
	d.queue = nil
}

func (d *Dispatcher) release() {
	d.owner.Store(0)
	// a Kill inside the window wins
	d.mode.CompareAndSwap(Active, Idle)
}

func (d *Dispatcher) onOwnerThread() bool {
	return d.owner.Load() == currentThread()
}

func (d *Dispatcher) push(job Job) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.mode.Load() == Dead {
		return
	}
	d.queue = append(d.queue, job)
}

func (d *Dispatcher) pop() (Job, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if len(d.queue) == 0 {
		return nil, false
	}
	job := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return job, true
}

// drain executes queued jobs until the queue is empty. The lock is not
// held while a job runs, so jobs may queue more work.
func (d *Dispatcher) drain() {
	for {
		job, ok := d.pop()
		if !ok {
			return
		}
		if err := job(d.ctx); err != nil {
			log.Errorf("render job failed: %v", err)
		}
	}
}
