package shaders

import (
	"strings"
	"testing"

	"github.com/Faultbox/pickalpha/internal/engine/shader"
	"github.com/Faultbox/pickalpha/pkg/math"
)

func TestEmbeddedSourcesDeclareContract(t *testing.T) {
	for _, name := range []string{"a_position", "a_texCoord", "v_texCoord"} {
		if !strings.Contains(VertexShader, name) {
			t.Errorf("vertex shader does not declare %s", name)
		}
	}
	for _, name := range []string{UniformImage, UniformPickColor, UniformTolerance} {
		if !strings.Contains(FragmentShader, "uniform") || !strings.Contains(FragmentShader, name) {
			t.Errorf("fragment shader does not declare %s", name)
		}
	}
}

func TestEmbeddedProgramLinks(t *testing.T) {
	dev := NewSoftDevice()
	prog, err := shader.CompileProgram(dev, VertexShader, FragmentShader)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	for _, name := range []string{UniformImage, UniformPickColor, UniformTolerance} {
		if shader.Uniform(dev, prog, name) < 0 {
			t.Errorf("uniform %s not found", name)
		}
	}
}

func TestMatches(t *testing.T) {
	red := math.RGB8(255, 0, 0)
	tests := []struct {
		name  string
		color math.Vec3
		tol   float32
		want  bool
	}{
		{"exact at zero", red, 0, true},
		{"off by one at zero", math.RGB8(254, 0, 0), 0, false},
		{"filter noise at zero", math.Vec3{X: 1 - 1e-5}, 0, true},
		{"opposite corner at one", math.RGB8(0, 255, 255), 1, true},
		{"opposite corner below one", math.RGB8(0, 255, 255), 0.99, false},
		{"near", math.RGB8(230, 10, 10), 0.1, true},
		{"far", math.RGB8(128, 128, 0), 0.3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.color, red, tt.tol); got != tt.want {
				t.Errorf("Matches(%v, red, %v) = %v, want %v", tt.color, tt.tol, got, tt.want)
			}
		})
	}
}

func TestMatchesMonotonic(t *testing.T) {
	pick := math.RGB8(40, 120, 200)
	colors := []math.Vec3{
		math.RGB8(40, 120, 200),
		math.RGB8(41, 119, 200),
		math.RGB8(90, 120, 150),
		math.RGB8(0, 0, 0),
		math.RGB8(255, 255, 255),
		math.RGB8(255, 0, 0),
	}
	for _, c := range colors {
		matched := false
		for i := 0; i <= 100; i++ {
			tol := float32(i) / 100
			m := Matches(c, pick, tol)
			if matched && !m {
				t.Errorf("%v matched below tolerance %v but not at it", c, tol)
			}
			matched = matched || m
		}
		if !matched {
			t.Errorf("%v never matched", c)
		}
	}
}

func TestShade(t *testing.T) {
	pick := math.RGB8(0, 0, 255)
	sample := [4]float32{0, 0, 1, 0.8}
	if got := Shade(sample, pick, 0); got != [4]float32{0, 0, 1, 0} {
		t.Errorf("matched Shade = %v, want alpha 0 with RGB kept", got)
	}
	other := [4]float32{1, 1, 0, 1}
	if got := Shade(other, pick, 0.5); got != other {
		t.Errorf("unmatched Shade = %v, want %v", got, other)
	}
}
