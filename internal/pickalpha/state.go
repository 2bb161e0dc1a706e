package pickalpha

import (
	"fmt"

	"github.com/Faultbox/pickalpha/pkg/math"
)

// DefaultTolerance is the tolerance a new controller starts with.
const DefaultTolerance float32 = 0.3

// Lifecycle is the controller's position in its state machine.
type Lifecycle int

const (
	Uninitialized Lifecycle = iota
	Ready                   // initialized, no image
	ImageLoaded
	Disposed
)

func (l Lifecycle) String() string {
	switch l {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case ImageLoaded:
		return "image-loaded"
	case Disposed:
		return "disposed"
	default:
		return fmt.Sprintf("lifecycle(%d)", int(l))
	}
}

// PickState is what the render step reads on every draw.
type PickState struct {
	// Color is the picked reference color, each channel in [0,1].
	Color math.Vec3
	// Tolerance is the normalized RGB distance within which pixels match.
	Tolerance float32
	HasImage  bool
}

// DisplayColor formats the pick color the way CSS does, e.g. "rgb(255, 0, 0)".
func (s PickState) DisplayColor() string {
	r, g, b := s.Color.RGB8()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}
