// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/devblok/arena/utility/kar"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil {
		currentUserName = u.Name
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing (default current user)")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	compress        = flag.String("c", "", "Compress the given folder")
	list            = flag.String("l", "", "List the contents of the given archive")
	dstFile         = flag.String("f", "arena.kar", "Destination file")
	builtin         = flag.Bool("builtin", false, "Include the built-in shader sources")
	silent          = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("can't load .env: %v", err)
	}
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	switch {
	case *list != "" && *compress != "":
		log.Fatal("only one operation at a time")
	case *list != "":
		if err := listFiles(*list); err != nil {
			log.Fatal(err)
		}
	case *compress != "" || *builtin:
		if err := compressFiles(); err != nil {
			log.Fatal(err)
		}
	default:
		flag.PrintDefaults()
	}
}

func compressFiles() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer karBuilder.Close()

	if *builtin {
		if err := addBox(karBuilder, packr.NewBox("../../shaders"), "shaders"); err != nil {
			return err
		}
	}
	if *compress != "" {
		if err := addDirectory(karBuilder, *compress); err != nil {
			return err
		}
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	written, err := karBuilder.WriteTo(dst)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(*dstFile)
		return err
	}

	log.Infof("%s: %d files, %d bytes", *dstFile, karBuilder.Len(), written)
	return nil
}

func listFiles(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	archive, err := kar.Open(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	header := archive.Header()
	fmt.Printf("author: %s, version: %d, created: %s\n",
		header.Author, header.Version, time.Unix(header.DateCreated, 0).Format(time.RFC3339))
	for _, name := range archive.Names() {
		entry, err := archive.Stat(name)
		if err != nil {
			return err
		}
		fmt.Printf("%10d %10d  %s\n", entry.Size, entry.CompressedSize, name)
	}
	return nil
}
