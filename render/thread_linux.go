// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import "golang.org/x/sys/unix"

func currentThread() uint64 {
	return uint64(unix.Gettid())
}
