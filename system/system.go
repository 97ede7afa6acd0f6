// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package system ties the game's subsystems together and runs the main loop.
package system

import (
	"fmt"
	"time"

	"github.com/devblok/arena/core"
	"github.com/devblok/arena/data"
	"github.com/devblok/arena/device"
	"github.com/devblok/arena/render"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// how long Destroy waits for the data loader to wind down
const loaderShutdownTimeout = time.Second

// System contains the game's subsystems and global state.
type System struct {
	data   *data.Loader
	render *render.System
	window *device.Window
	time   *core.Time

	events func() sdl.Event
	swap   func()
}

// Init initializes the game's subsystems. It must be called from the main
// thread, which the returned System is bound to from then on.
func Init(cfg core.Configuration) (*System, error) {
	log.Debug("initializing...")

	loader, err := data.Open(cfg.Data.Path, cfg.Data)
	if err != nil {
		return nil, err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		loader.Close()
		return nil, fmt.Errorf("can't initialize SDL: %w", err)
	}

	window, err := device.NewWindow(cfg.Renderer)
	if err != nil {
		sdl.Quit()
		loader.Close()
		return nil, err
	}

	rs, err := render.NewSystem(window, loader, render.DefaultPrograms)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		loader.Close()
		return nil, fmt.Errorf("can't initialize rendering: %w", err)
	}

	s := newSystem(loader, rs, core.NewTime(cfg.Time))
	s.window = window
	s.swap = window.Swap
	return s, nil
}

func newSystem(loader *data.Loader, rs *render.System, t *core.Time) *System {
	return &System{
		data:   loader,
		render: rs,
		time:   t,
		events: sdl.PollEvent,
		swap:   func() {},
	}
}

// Data returns the main data loader.
func (s *System) Data() *data.Loader {
	return s.data
}

// Render returns the render system.
func (s *System) Render() *render.System {
	return s.render
}

// Run executes the main loop until a state quits or fails.
func (s *System) Run(state State) error {
	log.Debug("game started!")

MainLoop:
	for {
		<-s.time.FpsTicker().C

		for event := s.events(); event != nil; event = s.events() {
			result := s.handleEvent(event)
			switch result.action {
			case changeState:
				state = result.state
			case quit:
				break MainLoop
			case fail:
				return result.err
			}
		}

		delta := s.time.Delta()

	UpdateLoop:
		for {
			result := state.Update(s, delta)
			switch result.action {
			case proceed:
				break UpdateLoop
			case changeState:
				state = result.state
				delta = 0
			case quit:
				break MainLoop
			case fail:
				return result.err
			}
		}

		if err := s.render.Render(func(f *render.Frame) error {
			return state.Render(f, delta)
		}); err != nil {
			return fmt.Errorf("rendering failed: %w", err)
		}
		s.swap()
	}

	log.Debug("shutting down...")
	state.OnQuit(s)
	return nil
}

func (s *System) handleEvent(event sdl.Event) UpdateResult {
	switch et := event.(type) {
	case *sdl.QuitEvent:
		return Quit
	case *sdl.WindowEvent:
		if et.Event == sdl.WINDOWEVENT_CLOSE {
			return Quit
		}
	case *sdl.KeyboardEvent:
		if et.Type == sdl.KEYDOWN && et.Keysym.Sym == sdl.K_ESCAPE {
			return Quit
		}
	}
	return Continue
}

// Destroy tears the subsystems down: rendering first, so nothing can reach
// the context any more, then the data loader, the window and SDL.
func (s *System) Destroy() {
	if s.render != nil {
		s.render.Destroy()
	}

	if s.data != nil {
		s.data.Close()
		select {
		case <-s.data.Done():
		case <-time.After(loaderShutdownTimeout):
			log.Warn("data loader did not stop in time")
		}
	}

	s.time.Stop()

	if s.window != nil {
		s.window.Destroy()
		sdl.Quit()
	}
}
