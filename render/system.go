// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"github.com/devblok/arena/gfx"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// maxFlushedErrors is how many pending error flags are tolerated at once.
const maxFlushedErrors = 100

// NewSystem initializes the rendering subsystem on ctx: it checks the API
// version and loads every program in specs through reader. It must be called
// from the thread that owns ctx, and only once per context; the returned
// System is the only way to reach the context afterwards.
func NewSystem(ctx gfx.Context, reader Reader, specs []ProgramSpec) (*System, error) {
	s := &System{
		ctx:  ctx,
		jobs: NewDispatcher(ctx),
	}

	err := s.jobs.Run(func(ctx gfx.Context) error {
		if err := checkVersion(ctx); err != nil {
			return err
		}

		programs, err := s.loadPrograms(reader, specs)
		if err != nil {
			return err
		}
		s.programs = programs
		return nil
	})
	if err != nil {
		s.jobs.Kill()
		return nil, err
	}
	return s, nil
}

// System is the rendering subsystem.
type System struct {
	ctx      gfx.Context
	jobs     *Dispatcher
	arena    arena
	programs *Programs

	// currentProgram is only touched on the context thread
	currentProgram uint32
}

// Mode returns the current mode of the render context.
func (s *System) Mode() Mode {
	return s.jobs.Mode()
}

// Programs returns the loaded shader programs.
func (s *System) Programs() *Programs {
	return s.programs
}

// Dispatch runs job on the context thread, now if possible or else at the
// start of the next frame. Safe to call from any goroutine.
func (s *System) Dispatch(job func(f *Frame) error) error {
	return s.jobs.Dispatch(func(ctx gfx.Context) error {
		return job(&Frame{system: s, ctx: ctx})
	})
}

// Render invokes fn with a rendering context. Jobs queued since the last
// frame run first. Rendering can't be nested.
func (s *System) Render(fn func(f *Frame) error) error {
	return s.jobs.Run(func(ctx gfx.Context) error {
		frame := &Frame{
			system: s,
			ctx:    ctx,
		}
		defer flushErrors(ctx)
		return fn(frame)
	})
}

// Destroy deletes the programs and marks the context dead, jobs
// dispatched later are dropped. Must be called from the owner thread.
func (s *System) Destroy() {
	if err := s.jobs.Run(func(gfx.Context) error {
		s.programs.Release()
		return nil
	}); err != nil {
		log.Warnf("render system teardown: %v", err)
	}
	s.jobs.Kill()
}

// release drops a reference to h and dispatches the deletion of whatever
// is no longer referenced.
func (s *System) release(h Handle) {
	for _, msg := range s.arena.release(h) {
		msg := msg
		if err := s.jobs.Dispatch(func(ctx gfx.Context) error {
			s.destroy(ctx, msg)
			return nil
		}); err != nil {
			log.Errorf("can't delete %s %d: %v", msg.kind, msg.id, err)
		}
	}
}

// destroy deletes a raw object. Runs on the context thread.
func (s *System) destroy(ctx gfx.Context, msg destroyMessage) {
	switch msg.kind {
	case kindShader:
		ctx.DeleteShader(msg.id)
	case kindProgram:
		if s.currentProgram == msg.id {
			ctx.UseProgram(0)
			s.currentProgram = 0
		}
		ctx.DeleteProgram(msg.id)
	case kindBuffer:
		ctx.DeleteBuffer(msg.id)
	}
}

// Frame is the rendering context handed out for the duration of an active window.
type Frame struct {
	system *System
	ctx    gfx.Context
}

// System returns the render system the frame belongs to.
func (f *Frame) System() *System {
	return f.system
}

// Clear clears the screen to the specified color.
func (f *Frame) Clear(color mgl32.Vec3) {
	f.ctx.Clear(color.X(), color.Y(), color.Z(), 0)
}

// SurfaceSize returns the size of the rendering surface in pixels.
func (f *Frame) SurfaceSize() mgl32.Vec2 {
	w, h := f.ctx.DrawableSize()
	return mgl32.Vec2{float32(w), float32(h)}
}

// Use makes p the current program.
func (f *Frame) Use(p *Program) error {
	id, err := p.ID()
	if err != nil {
		return err
	}
	if f.system.currentProgram != id {
		f.ctx.UseProgram(id)
		f.system.currentProgram = id
	}
	return nil
}

// Draw draws m with p.
func (f *Frame) Draw(p *Program, m *Mesh) error {
	if err := f.Use(p); err != nil {
		return err
	}
	id, err := m.ID()
	if err != nil {
		return err
	}
	f.ctx.DrawTriangles(id, m.count)
	return nil
}

// flushErrors logs and clears all pending error flags.
func flushErrors(ctx gfx.Context) {
	for n := 0; ; n++ {
		code := ctx.GetError()
		if code == gfx.NoError {
			return
		}
		log.Error(code)
		if n+1 == maxFlushedErrors {
			panic("too many OpenGL errors")
		}
	}
}
