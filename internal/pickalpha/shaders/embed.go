// Package shaders provides the embedded highlight program and a Go
// reference of its fragment logic.
package shaders

import _ "embed"

// VertexShader passes the quad through and forwards v_texCoord.
//
//go:embed highlight.vert
var VertexShader string

// FragmentShader knocks out pixels whose color is within u_tolerance of
// u_pickColor by zeroing their alpha.
//
//go:embed highlight.frag
var FragmentShader string

// Uniform names the fragment shader declares.
const (
	UniformImage     = "u_image"
	UniformPickColor = "u_pickColor"
	UniformTolerance = "u_tolerance"
)
