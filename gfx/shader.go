// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import (
	"path"
	"strings"
)

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (t ShaderType) String() string {
	switch t {
	case VertexShaderType:
		return "vertex"
	case FragmentShaderType:
		return "fragment"
	default:
		return "unknown"
	}
}

// ShaderTypeOf tells the shader type from a file name. The last
// suffix is the type, so "unlit.vert" is a vertex shader and
// "unlit.frag" a fragment shader. Anything else is unknown.
func ShaderTypeOf(name string) ShaderType {
	nodes := strings.Split(path.Base(name), ".")
	if len(nodes) < 2 {
		return UnknownShaderType
	}

	switch nodes[len(nodes)-1] {
	case "vert":
		return VertexShaderType
	case "frag":
		return FragmentShaderType
	default:
		return UnknownShaderType
	}
}
