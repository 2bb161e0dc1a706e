package ui

import (
	"testing"

	"github.com/AllenDang/cimgui-go/imgui"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		avail   imgui.Vec2
		upscale bool
		want    imgui.Vec2
	}{
		{"downscale wide", 400, 100, imgui.NewVec2(200, 200), false, imgui.NewVec2(200, 50)},
		{"downscale tall", 100, 400, imgui.NewVec2(200, 200), false, imgui.NewVec2(50, 200)},
		{"no upscale", 10, 20, imgui.NewVec2(200, 200), false, imgui.NewVec2(10, 20)},
		{"integer upscale", 10, 20, imgui.NewVec2(200, 200), true, imgui.NewVec2(100, 200)},
		{"integer upscale floors", 30, 30, imgui.NewVec2(100, 100), true, imgui.NewVec2(90, 90)},
		{"empty image", 0, 10, imgui.NewVec2(100, 100), true, imgui.NewVec2(0, 0)},
		{"no room", 10, 10, imgui.NewVec2(0, 100), true, imgui.NewVec2(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitSize(tt.w, tt.h, tt.avail, tt.upscale)
			if got != tt.want {
				t.Errorf("FitSize = %v, want %v", got, tt.want)
			}
		})
	}
}
