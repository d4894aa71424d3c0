package frame

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/geolayer/geo"
	"github.com/akmonengine/geolayer/orient"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidProjection is returned when the host matrix is not 16 finite values
var ErrInvalidProjection = errors.New("frame: invalid projection matrix")

// Transform places the renderer's scene in the host Mercator space for one frame.
// It is derived from cached state and discarded once the frame is drawn.
type Transform struct {
	Scale       mgl64.Vec3
	Rotation    mgl64.Quat
	Translation mgl64.Vec3
}

// hostUp turns the renderer's canonical frame (east, up, north) into the
// host Mercator axes (east, south, up)
var hostUp = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})

// New builds the frame transform of an anchor and an up-axis correction.
//
// Scene content is first rotated by the correction so that its up axis is
// the canonical +y, applied as roll, then pitch, then yaw. hostUp then tilts
// +y onto the host's vertical.
func New(state geo.AnchorState, correction orient.Correction) Transform {
	s := state.Scale
	euler := correction.Euler

	yaw := mgl64.QuatRotate(euler.Y(), mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(euler.X(), mgl64.Vec3{1, 0, 0})
	roll := mgl64.QuatRotate(euler.Z(), mgl64.Vec3{0, 0, 1})

	return Transform{
		Scale:       mgl64.Vec3{s, s, s},
		Rotation:    hostUp.Mul(yaw).Mul(pitch).Mul(roll).Normalize(),
		Translation: state.Translation(),
	}
}

// World composes T·R·S: scale into Mercator units, rotate, then move to the anchor
func (t Transform) World() mgl64.Mat4 {
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	translation := mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())

	return translation.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

// Apply transforms a scene position into host Mercator space
func (t Transform) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(v, t.World())
}

// ParseProjection reads the host's 16 column-major values
func ParseProjection(values []float64) (mgl64.Mat4, error) {
	if len(values) != 16 {
		return mgl64.Mat4{}, fmt.Errorf("%w: %d values", ErrInvalidProjection, len(values))
	}

	var m mgl64.Mat4
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return mgl64.Mat4{}, fmt.Errorf("%w: element %d is %v", ErrInvalidProjection, i, v)
		}
		m[i] = v
	}

	return m, nil
}

// Combine returns the matrix the camera uses for the frame: the host
// projection applied after the world transform
func Combine(world, projection mgl64.Mat4) mgl64.Mat4 {
	return projection.Mul4(world)
}
