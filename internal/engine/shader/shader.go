// Package shader compiles and links GLSL programs on a gfx.Device.
package shader

import (
	"fmt"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

// ShaderCompileError carries the compiler diagnostics of a failed stage.
type ShaderCompileError struct {
	Stage gfx.Stage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("%s shader: %s", e.Stage, e.Log)
}

// ProgramLinkError carries the linker diagnostics of a failed program.
type ProgramLinkError struct {
	Log string
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("link: %s", e.Log)
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program handle or a *ShaderCompileError / *ProgramLinkError.
// Nothing created here outlives a failure.
func CompileProgram(dev gfx.Device, vertexSrc, fragmentSrc string) (gfx.Handle, error) {
	vertShader, err := compileShader(dev, gfx.StageVertex, vertexSrc)
	if err != nil {
		return 0, err
	}
	defer dev.DeleteShader(vertShader)

	fragShader, err := compileShader(dev, gfx.StageFragment, fragmentSrc)
	if err != nil {
		return 0, err
	}
	defer dev.DeleteShader(fragShader)

	program := dev.CreateProgram()
	dev.AttachShader(program, vertShader)
	dev.AttachShader(program, fragShader)

	if ok, log := dev.LinkProgram(program); !ok {
		dev.DeleteProgram(program)
		return 0, &ProgramLinkError{Log: log}
	}

	return program, nil
}

// compileShader compiles a single shader of the given stage.
func compileShader(dev gfx.Device, stage gfx.Stage, source string) (gfx.Handle, error) {
	sh := dev.CreateShader(stage, source)
	if ok, log := dev.CompileShader(sh); !ok {
		dev.DeleteShader(sh)
		return 0, &ShaderCompileError{Stage: stage, Log: log}
	}
	return sh, nil
}

// Uniform returns the uniform location for the given name, or -1 if the
// uniform is not found or inactive.
func Uniform(dev gfx.Device, program gfx.Handle, name string) int32 {
	return dev.UniformLocation(program, name)
}
