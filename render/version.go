// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/devblok/arena/gfx"
	log "github.com/sirupsen/logrus"
)

// The oldest API version the shaders are written for.
const (
	MinMajorVersion = 3
	MinMinorVersion = 0
)

var versionPattern = regexp.MustCompile(`^([0-9]+)\.([0-9]+)`)

// parseVersion reads the major and minor number off a version string.
func parseVersion(version string) (int, int, error) {
	captures := versionPattern.FindStringSubmatch(version)
	if captures == nil {
		return 0, 0, fmt.Errorf("can't parse GL_VERSION string: %q", version)
	}
	major, err := strconv.Atoi(captures[1])
	if err != nil {
		return 0, 0, fmt.Errorf("can't parse GL_VERSION string: %w", err)
	}
	minor, err := strconv.Atoi(captures[2])
	if err != nil {
		return 0, 0, fmt.Errorf("can't parse GL_VERSION string: %w", err)
	}
	return major, minor, nil
}

// checkVersion makes sure we're using a compatible version.
func checkVersion(ctx gfx.Context) error {
	version := ctx.Version()
	if version == "" {
		return fmt.Errorf("missing GL_VERSION string")
	}
	extensions := ctx.Extensions()

	log.Debugf("OpenGL version: %s", version)
	log.Tracef("OpenGL extensions: %s", extensions)

	major, minor, err := parseVersion(version)
	if err != nil {
		return err
	}

	if major < MinMajorVersion || (major == MinMajorVersion && minor < MinMinorVersion) {
		return fmt.Errorf("unsupported OpenGL version: %d.%d", major, minor)
	}

	if major > MinMajorVersion {
		compatibility := false
		for _, ext := range strings.Fields(extensions) {
			if ext == "GL_ARB_compatibility" {
				compatibility = true
				break
			}
		}
		if !compatibility {
			log.Warnf("possibly unsupported OpenGL core profile: %d.%d", major, minor)
		}
	}
	return nil
}
