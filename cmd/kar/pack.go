// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/devblok/arena/utility/kar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// box is the part of a packr box the builder needs.
type box interface {
	List() []string
	Find(name string) ([]byte, error)
}

// addDirectory compresses every file under dir concurrently, named
// by their path relative to dir.
func addDirectory(builder *kar.Builder, dir string) error {
	var filesToCompress []string
	if err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	}); err != nil {
		return err
	}

	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())
	for _, ftc := range filesToCompress {
		ftc := ftc
		group.Go(func() error {
			name, err := filepath.Rel(dir, ftc)
			if err != nil {
				return err
			}
			f, err := os.Open(ftc)
			if err != nil {
				return err
			}
			defer f.Close()

			log.Debugf("compressing %s", name)
			return builder.Add(filepath.ToSlash(name), f)
		})
	}
	return group.Wait()
}

// addBox adds the contents of b under prefix.
func addBox(builder *kar.Builder, b box, prefix string) error {
	for _, name := range b.List() {
		contents, err := b.Find(name)
		if err != nil {
			return err
		}
		log.Debugf("adding built-in %s", name)
		if err := builder.Add(path.Join(prefix, name), bytes.NewReader(contents)); err != nil {
			return err
		}
	}
	return nil
}
