// Package shader holds the fixed GLSL text wrapped around a Shadertoy
// style fragment shader, and loads user shader files.
package shader

import (
	"fmt"
	"os"
	"strings"
)

// Prologue declares the uniforms available to the user shader. iMouse is
// declared for compatibility and always zero.
const Prologue = "uniform vec3 iResolution; uniform float iTime; uniform float iTimeDelta; uniform float iFrame; uniform vec4 iMouse;\n"

// Epilogue calls the user's mainImage for every fragment.
const Epilogue = "void main() {\n    mainImage(gl_FragColor, gl_FragCoord.xy);\n}\n"

// Vertex is the vertex stage; it passes through a single triangle that
// covers the viewport.
const Vertex = "attribute vec2 pos;\nvoid main() {\n  gl_Position = vec4(pos.x, pos.y, 0, 1);\n}\n"

// Triangle is the vertex data drawn by Vertex, covering clip space.
var Triangle = [6]float32{-1, -3, -1, 1, 3, 1}

// Uniform names, in Prologue order.
const (
	UniformResolution = "iResolution"
	UniformTime       = "iTime"
	UniformTimeDelta  = "iTimeDelta"
	UniformFrame      = "iFrame"
	UniformMouse      = "iMouse"
)

// Source is a fragment shader split into the parts handed to the
// compiler.
type Source struct {
	Path string
	Body string
}

// Load reads a user shader file.
func Load(path string) (*Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	return &Source{Path: path, Body: string(b)}, nil
}

// Parts returns the fragment stage as separate strings, suitable for
// glShaderSource.
func (s *Source) Parts() []string {
	return []string{Prologue, s.Body, Epilogue}
}

// String returns the complete fragment stage.
func (s *Source) String() string {
	return strings.Join(s.Parts(), "")
}

// Help is the text printed after the usage line by -h.
func Help() string {
	return "\nPrefix:\n\n" + Prologue + "\nSuffix:\n\n" + Epilogue
}
