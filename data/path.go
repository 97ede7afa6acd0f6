// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package data

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath returns the path of the data archive when none is configured,
// which is DataFilename in the directory of the running executable.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("can't get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), DataFilename), nil
}
