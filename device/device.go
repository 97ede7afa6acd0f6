// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device opens the game window and its OpenGL context.
package device

import (
	"fmt"

	"github.com/devblok/arena/core"
	"github.com/go-gl/gl/v3.2-compatibility/gl"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// attributes requested for the default framebuffer
var glAttributes = []struct {
	attr  sdl.GLattr
	value int
}{
	{sdl.GL_BUFFER_SIZE, 24},
	{sdl.GL_RED_SIZE, 8},
	{sdl.GL_GREEN_SIZE, 8},
	{sdl.GL_BLUE_SIZE, 8},
	{sdl.GL_ALPHA_SIZE, 0},
	{sdl.GL_DEPTH_SIZE, 16},
	{sdl.GL_STENCIL_SIZE, 0},
	{sdl.GL_DOUBLEBUFFER, 1},
}

// Window is an SDL window with an OpenGL context. SDL must be initialized
// with video before one is created. A Window is a gfx.Context, like any
// context it may only be used from one thread at a time.
type Window struct {
	window  *sdl.Window
	context sdl.GLContext

	// program is the one last passed to UseProgram
	program uint32
}

// NewWindow creates the window and makes its context current on the calling thread.
func NewWindow(cfg core.RendererConfiguration) (*Window, error) {
	for _, a := range glAttributes {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			return nil, fmt.Errorf("can't set OpenGL attribute %d: %w", a.attr, err)
		}
	}

	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth),
		int32(cfg.ScreenHeight),
		sdl.WINDOW_OPENGL|sdl.WINDOW_ALLOW_HIGHDPI|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("can't create window: %w", err)
	}

	context, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("can't create OpenGL context: %w", err)
	}

	w := &Window{
		window:  window,
		context: context,
	}
	if err := w.MakeCurrent(); err != nil {
		w.Destroy()
		return nil, err
	}

	setSwapInterval(cfg.Vsync)

	if err := gl.Init(); err != nil {
		w.Destroy()
		return nil, fmt.Errorf("can't load OpenGL functions: %w", err)
	}
	return w, nil
}

// setSwapInterval prefers adaptive vsync and falls back to plain vsync.
func setSwapInterval(vsync bool) {
	if !vsync {
		if err := sdl.GLSetSwapInterval(0); err != nil {
			log.Warnf("can't disable vsync: %v", err)
		}
		return
	}
	if err := sdl.GLSetSwapInterval(-1); err != nil {
		log.Debugf("adaptive vsync unavailable: %v", err)
		if err := sdl.GLSetSwapInterval(1); err != nil {
			log.Warnf("can't enable vsync: %v", err)
		}
	}
}

// MakeCurrent implements gfx.Context
func (w *Window) MakeCurrent() error {
	if err := w.window.GLMakeCurrent(w.context); err != nil {
		return fmt.Errorf("can't make OpenGL context current: %w", err)
	}
	return nil
}

// DrawableSize implements gfx.Context
func (w *Window) DrawableSize() (int32, int32) {
	return w.window.GLGetDrawableSize()
}

// ID returns the SDL window id, to match window events against.
func (w *Window) ID() uint32 {
	id, err := w.window.GetID()
	if err != nil {
		log.Warnf("can't get window id: %v", err)
	}
	return id
}

// Swap presents the frame.
func (w *Window) Swap() {
	w.window.GLSwap()
}

// Destroy deletes the context and closes the window.
func (w *Window) Destroy() {
	if w.context != nil {
		sdl.GLDeleteContext(w.context)
		w.context = nil
	}
	if w.window != nil {
		if err := w.window.Destroy(); err != nil {
			log.Warnf("can't destroy window: %v", err)
		}
		w.window = nil
	}
}
