package orient

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidUpAxis is returned for up axes that are neither "Y", "Z" nor a non-zero vector
var ErrInvalidUpAxis = errors.New("orient: invalid up axis")

// CanonicalUp is the renderer's up vector every configured axis is rotated onto
var CanonicalUp = mgl64.Vec3{0, 1, 0}

// UpAxis names the axis of the renderer's scene content that points up in the
// real world: the symbolic "Y" or "Z", or an arbitrary direction.
// The zero value is AxisY.
type UpAxis struct {
	name   string
	vector mgl64.Vec3
}

var (
	AxisY = UpAxis{name: "Y"}
	AxisZ = UpAxis{name: "Z"}
)

// AxisVector returns an up axis pointing along v. v does not need to be normalized.
func AxisVector(v mgl64.Vec3) UpAxis {
	return UpAxis{name: "vector", vector: v}
}

// ParseUpAxis reads "Y", "Z" (any case) or a comma separated vector such as "0,0,1".
// On error the returned axis still holds the raw text, so that it can be reported.
func ParseUpAxis(s string) (UpAxis, error) {
	trimmed := strings.TrimSpace(s)

	switch strings.ToUpper(trimmed) {
	case "", "Y":
		return AxisY, nil
	case "Z":
		return AxisZ, nil
	}

	parts := strings.Split(trimmed, ",")
	if len(parts) != 3 {
		return UpAxis{name: trimmed}, fmt.Errorf("%w: %q", ErrInvalidUpAxis, s)
	}

	var v mgl64.Vec3
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return UpAxis{name: trimmed}, fmt.Errorf("%w: %q", ErrInvalidUpAxis, s)
		}
		v[i] = f
	}

	axis := AxisVector(v)
	if _, err := axis.Vector(); err != nil {
		return axis, err
	}

	return axis, nil
}

// Vector resolves the axis to a unit vector
func (a UpAxis) Vector() (mgl64.Vec3, error) {
	switch a.name {
	case "", "Y":
		return mgl64.Vec3{0, 1, 0}, nil
	case "Z":
		return mgl64.Vec3{0, 0, 1}, nil
	case "vector":
		if a.vector.Len() == 0 {
			return CanonicalUp, fmt.Errorf("%w: zero vector", ErrInvalidUpAxis)
		}
		return a.vector.Normalize(), nil
	}

	return CanonicalUp, fmt.Errorf("%w: %q", ErrInvalidUpAxis, a.name)
}

func (a UpAxis) String() string {
	switch a.name {
	case "":
		return "Y"
	case "vector":
		return fmt.Sprintf("%g,%g,%g", a.vector.X(), a.vector.Y(), a.vector.Z())
	}

	return a.name
}

func (a UpAxis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText never fails: an unknown axis is kept and reported later by
// Vector, so a configuration file with a bad axis still loads.
func (a *UpAxis) UnmarshalText(text []byte) error {
	*a, _ = ParseUpAxis(string(text))
	return nil
}
