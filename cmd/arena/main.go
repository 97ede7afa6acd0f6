// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"os"
	"runtime"

	"github.com/devblok/arena/core"
	"github.com/devblok/arena/system"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func init() {
	// SDL and the OpenGL context live on the main thread
	runtime.LockOSThread()
}

var dataPath = flag.String("data-path", "", "Path of the data archive (default next to the executable)")

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("can't load .env: %v", err)
	}

	if _, ok := os.LookupEnv("TRACE"); ok {
		log.SetLevel(log.TraceLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := core.LoadConfiguration()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}

	sys, err := system.Init(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}

	err = sys.Run(newPlayground(sys))
	sys.Destroy()
	if err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}
