// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/devblok/arena/core"
	"github.com/devblok/arena/device"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

// contextInfo describes what the default window's context supports.
type contextInfo struct {
	Version    string   `json:"version"`
	Extensions []string `json:"extensions"`
	Width      int32    `json:"width"`
	Height     int32    `json:"height"`
}

func main() {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		log.Fatalf("can't initialize SDL: %v", err)
	}
	defer sdl.Quit()

	cfg := core.DefaultConfiguration.Renderer
	cfg.Title = "glinfo"
	window, err := device.NewWindow(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer window.Destroy()

	info := contextInfo{
		Version:    window.Version(),
		Extensions: strings.Fields(window.Extensions()),
	}
	info.Width, info.Height = window.DrawableSize()

	bytes, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n", bytes)
}
