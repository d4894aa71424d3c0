package orient

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return math.Abs(a.X()-b.X()) < epsilon &&
		math.Abs(a.Y()-b.Y()) < epsilon &&
		math.Abs(a.Z()-b.Z()) < epsilon
}

var testVectors = []mgl64.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
	{3, -4, 12},
	{-0.25, 7.5, 2},
}

var testAxes = []UpAxis{
	AxisY,
	AxisZ,
	AxisVector(mgl64.Vec3{1, 0, 0}),
	AxisVector(mgl64.Vec3{0, -1, 0}),
	AxisVector(mgl64.Vec3{1, 1, 1}),
	AxisVector(mgl64.Vec3{-2, 0.5, 3}),
}

// =============================================================================
// NewCorrection Tests
// =============================================================================

func TestNewCorrection_DefaultAxisIsIdentity(t *testing.T) {
	c, err := NewCorrection(AxisY)
	require.NoError(t, err)

	assert.True(t, c.IsIdentity())
	assert.True(t, vec3AlmostEqual(c.Euler, mgl64.Vec3{}, 1e-12))
	for _, v := range testVectors {
		assert.True(t, vec3AlmostEqual(v, c.Apply(v), 1e-12), "Apply(%v) = %v", v, c.Apply(v))
	}

	var zero UpAxis
	c, err = NewCorrection(zero)
	require.NoError(t, err)
	assert.True(t, c.IsIdentity())
}

func TestNewCorrection_MapsAxisOntoCanonicalUp(t *testing.T) {
	for _, axis := range testAxes {
		t.Run(axis.String(), func(t *testing.T) {
			c, err := NewCorrection(axis)
			require.NoError(t, err)

			up, err := axis.Vector()
			require.NoError(t, err)

			got := c.Apply(up)
			if !vec3AlmostEqual(got, CanonicalUp, 1e-9) {
				t.Errorf("Apply(%v) = %v, want %v", up, got, CanonicalUp)
			}
			assert.True(t, vec3AlmostEqual(up, c.Revert(CanonicalUp), 1e-9))
		})
	}
}

func TestNewCorrection_ZAxis(t *testing.T) {
	c, err := NewCorrection(AxisZ)
	require.NoError(t, err)

	assert.False(t, c.IsIdentity())
	assert.InDelta(t, 1, c.Rotation.Len(), 1e-12)

	// z-up content (east, north, up) becomes canonical (east, up, -north)
	got := c.Apply(mgl64.Vec3{1, 2, 3})
	assert.True(t, vec3AlmostEqual(mgl64.Vec3{1, 3, -2}, got, 1e-9), "got %v", got)

	assert.InDelta(t, -math.Pi/2, c.Euler.X(), 1e-9)
	assert.InDelta(t, 0, c.Euler.Y(), 1e-9)
	assert.InDelta(t, 0, c.Euler.Z(), 1e-9)
}

func TestNewCorrection_XAxisIsRoll(t *testing.T) {
	c, err := NewCorrection(AxisVector(mgl64.Vec3{1, 0, 0}))
	require.NoError(t, err)

	assert.InDelta(t, 0, c.Euler.X(), 1e-9)
	assert.InDelta(t, 0, c.Euler.Y(), 1e-9)
	assert.InDelta(t, math.Pi/2, c.Euler.Z(), 1e-9)
}

func TestNewCorrection_InvalidAxisFallsBack(t *testing.T) {
	axes := []UpAxis{
		{name: "W"},
		AxisVector(mgl64.Vec3{}),
	}

	for _, axis := range axes {
		c, err := NewCorrection(axis)
		assert.True(t, errors.Is(err, ErrInvalidUpAxis))
		assert.True(t, c.IsIdentity())
		assert.Equal(t, AxisY, c.Axis)
	}
}

func TestCorrection_InverseRoundTrip(t *testing.T) {
	for _, axis := range testAxes {
		c, err := NewCorrection(axis)
		require.NoError(t, err)

		for _, v := range testVectors {
			back := c.Revert(c.Apply(v))
			if !vec3AlmostEqual(v, back, 1e-9) {
				t.Errorf("axis %v: Revert(Apply(%v)) = %v", axis, v, back)
			}
			back = c.Apply(c.Revert(v))
			assert.True(t, vec3AlmostEqual(v, back, 1e-9))
		}
	}
}

func TestCorrection_PreservesLength(t *testing.T) {
	c, err := NewCorrection(AxisVector(mgl64.Vec3{-2, 0.5, 3}))
	require.NoError(t, err)

	for _, v := range testVectors {
		assert.InDelta(t, v.Len(), c.Apply(v).Len(), 1e-9)
	}
}

// =============================================================================
// Euler Tests
// =============================================================================

func TestFromEuler_RebuildsRotation(t *testing.T) {
	for _, axis := range testAxes {
		t.Run(axis.String(), func(t *testing.T) {
			c, err := NewCorrection(axis)
			require.NoError(t, err)

			rebuilt := FromEuler(c.Euler)
			for _, v := range testVectors {
				want := c.Apply(v)
				got := rebuilt.Rotate(v)
				if !vec3AlmostEqual(want, got, 1e-9) {
					t.Errorf("FromEuler(%v).Rotate(%v) = %v, want %v", c.Euler, v, got, want)
				}
			}
		})
	}
}

func TestEulerYXZ_KnownRotations(t *testing.T) {
	tests := []struct {
		name  string
		euler mgl64.Vec3
	}{
		{name: "yaw only", euler: mgl64.Vec3{0, 0.7, 0}},
		{name: "pitch only", euler: mgl64.Vec3{-0.4, 0, 0}},
		{name: "roll only", euler: mgl64.Vec3{0, 0, 1.2}},
		{name: "mixed", euler: mgl64.Vec3{0.3, -1.1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eulerYXZ(FromEuler(tt.euler))
			if !vec3AlmostEqual(tt.euler, got, 1e-9) {
				t.Errorf("eulerYXZ(FromEuler(%v)) = %v", tt.euler, got)
			}
		})
	}
}
