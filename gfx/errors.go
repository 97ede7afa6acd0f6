// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import "fmt"

// ErrorCode is an error flag recorded by the context.
type ErrorCode uint32

// Error flags, the values match OpenGL.
const (
	NoError                     ErrorCode = 0
	InvalidEnum                 ErrorCode = 0x0500
	InvalidValue                ErrorCode = 0x0501
	InvalidOperation            ErrorCode = 0x0502
	StackOverflow               ErrorCode = 0x0503
	StackUnderflow              ErrorCode = 0x0504
	OutOfMemory                 ErrorCode = 0x0505
	InvalidFramebufferOperation ErrorCode = 0x0506
)

var errorNames = map[ErrorCode]string{
	NoError:                     "GL_NO_ERROR",
	InvalidEnum:                 "GL_INVALID_ENUM",
	InvalidValue:                "GL_INVALID_VALUE",
	InvalidOperation:            "GL_INVALID_OPERATION",
	StackOverflow:               "GL_STACK_OVERFLOW",
	StackUnderflow:              "GL_STACK_UNDERFLOW",
	OutOfMemory:                 "GL_OUT_OF_MEMORY",
	InvalidFramebufferOperation: "GL_INVALID_FRAMEBUFFER_OPERATION",
}

func (e ErrorCode) Error() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("OpenGL error code %d", uint32(e))
}
