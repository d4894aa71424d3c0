package orient

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Correction rotates scene content authored with a given up axis onto the
// renderer's canonical up (0,1,0).
// Euler holds (pitch, yaw, roll) such that Rotation = Ry(yaw)·Rx(pitch)·Rz(roll).
type Correction struct {
	Axis            UpAxis
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
	Euler           mgl64.Vec3
}

// NewIdentityCorrection creates the correction of the default axis
func NewIdentityCorrection() Correction {
	return Correction{
		Axis:            AxisY,
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewCorrection derives the correction of axis. An invalid axis yields the
// identity correction together with ErrInvalidUpAxis.
func NewCorrection(axis UpAxis) (Correction, error) {
	up, err := axis.Vector()
	if err != nil {
		return NewIdentityCorrection(), err
	}

	rotation := mgl64.QuatBetweenVectors(up, CanonicalUp).Normalize()

	return Correction{
		Axis:            axis,
		Rotation:        rotation,
		InverseRotation: rotation.Inverse(),
		Euler:           eulerYXZ(rotation),
	}, nil
}

// Apply rotates v from the configured axis convention into the canonical one
func (c Correction) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return c.Rotation.Rotate(v)
}

// Revert undoes Apply: a canonical y-up vector is expressed in the
// configured axis convention
func (c Correction) Revert(v mgl64.Vec3) mgl64.Vec3 {
	return c.InverseRotation.Rotate(v)
}

// IsIdentity reports whether the correction leaves vectors unchanged
func (c Correction) IsIdentity() bool {
	return c.Rotation.ApproxEqualThreshold(mgl64.QuatIdent(), 1e-12)
}

// eulerYXZ decomposes q into (pitch, yaw, roll) for the order Ry·Rx·Rz
func eulerYXZ(q mgl64.Quat) mgl64.Vec3 {
	m := q.Mat4().Mat3()
	m23 := mgl64.Clamp(m.At(1, 2), -1, 1)

	pitch := math.Asin(-m23)
	if math.Abs(m23) < 0.9999999 {
		return mgl64.Vec3{
			pitch,
			math.Atan2(m.At(0, 2), m.At(2, 2)),
			math.Atan2(m.At(1, 0), m.At(1, 1)),
		}
	}

	// gimbal lock: roll folds into yaw
	return mgl64.Vec3{pitch, math.Atan2(-m.At(2, 0), m.At(0, 0)), 0}
}

// FromEuler rebuilds Ry(yaw)·Rx(pitch)·Rz(roll) from a (pitch, yaw, roll) triple
func FromEuler(euler mgl64.Vec3) mgl64.Quat {
	yaw := mgl64.QuatRotate(euler.Y(), mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(euler.X(), mgl64.Vec3{1, 0, 0})
	roll := mgl64.QuatRotate(euler.Z(), mgl64.Vec3{0, 0, 1})

	return yaw.Mul(pitch).Mul(roll)
}
