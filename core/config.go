// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strconv"

	"github.com/gobuffalo/envy"
)

// Environment variables that override the default configuration
const (
	EnvDataPath     = "ARENA_DATA_PATH"
	EnvFps          = "ARENA_FPS"
	EnvScreenWidth  = "ARENA_WIDTH"
	EnvScreenHeight = "ARENA_HEIGHT"
	EnvVsync        = "ARENA_VSYNC"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Data     DataConfiguration
	Renderer RendererConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int
}

// DataConfiguration is used to configure the data loader
type DataConfiguration struct {
	// Path of the data archive, empty means next to the executable
	Path string

	// BufferSize is the size of the loader's scratch buffer
	BufferSize int

	// QueueSize is how many requests can wait for the loader
	// before senders start to block
	QueueSize int
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	Title string

	ScreenWidth  uint32
	ScreenHeight uint32

	Vsync bool
}

// DefaultConfiguration is what the game runs with when nothing is overridden
var DefaultConfiguration = Configuration{
	Time: TimeConfiguration{
		FramesPerSecond: 60,
	},
	Data: DataConfiguration{
		BufferSize: 1024,
		QueueSize:  256,
	},
	Renderer: RendererConfiguration{
		Title:        "ArenaBuilder",
		ScreenWidth:  640,
		ScreenHeight: 480,
		Vsync:        true,
	},
}

// LoadConfiguration starts from DefaultConfiguration and applies
// overrides found in the environment (and the .env file, if any).
func LoadConfiguration() (Configuration, error) {
	cfg := DefaultConfiguration
	cfg.Data.Path = envy.Get(EnvDataPath, cfg.Data.Path)

	var err error
	if cfg.Time.FramesPerSecond, err = envInt(EnvFps, cfg.Time.FramesPerSecond); err != nil {
		return cfg, err
	}
	width, err := envInt(EnvScreenWidth, int(cfg.Renderer.ScreenWidth))
	if err != nil {
		return cfg, err
	}
	height, err := envInt(EnvScreenHeight, int(cfg.Renderer.ScreenHeight))
	if err != nil {
		return cfg, err
	}
	cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight = uint32(width), uint32(height)

	if raw := envy.Get(EnvVsync, ""); raw != "" {
		if cfg.Renderer.Vsync, err = strconv.ParseBool(raw); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvVsync, err)
		}
	}
	return cfg, nil
}

func envInt(name string, def int) (int, error) {
	raw := envy.Get(name, "")
	if raw == "" {
		return def, nil
	}
	num, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", name, err)
	}
	if num < 0 {
		return def, fmt.Errorf("%s: negative value %d", name, num)
	}
	return num, nil
}
