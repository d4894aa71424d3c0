package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
)

// MercatorCoordinate is a position in the host map's projected space: x and y
// are normalized to [0, 1] across the world (y grows southward), z is the
// altitude expressed in the same units at the point's latitude.
type MercatorCoordinate struct {
	X float64
	Y float64
	Z float64
}

// MercatorFromPoint projects a geographic point into the host map's space
func MercatorFromPoint(p Point) MercatorCoordinate {
	xy := LatLngToXY(p)

	return MercatorCoordinate{
		X: 0.5 + xy.X/EarthCircumference,
		Y: 0.5 - xy.Y/EarthCircumference,
		Z: p.Altitude / circumferenceAtLatitude(p.Lat),
	}
}

// Point converts the coordinate back to latitude, longitude and altitude
func (m MercatorCoordinate) Point() Point {
	p := XYToLatLng(mercatorToXY(m))
	p.Altitude = m.Z * circumferenceAtLatitude(p.Lat)

	return p
}

func (m MercatorCoordinate) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{m.X, m.Y, m.Z}
}

func mercatorToXY(m MercatorCoordinate) r2.Point {
	return r2.Point{
		X: (m.X - 0.5) * EarthCircumference,
		Y: (0.5 - m.Y) * EarthCircumference,
	}
}

// MeterInMercatorUnits is the length of one meter in host Mercator units at
// the given latitude. It is always positive and grows toward the poles.
func MeterInMercatorUnits(lat float64) float64 {
	return 1 / circumferenceAtLatitude(lat)
}

func circumferenceAtLatitude(lat float64) float64 {
	return EarthCircumference * math.Cos(radians(lat))
}

// AnchorState caches the host Mercator position of an anchor and the
// meter-to-Mercator scale at its latitude
type AnchorState struct {
	X     float64
	Y     float64
	Z     float64
	Scale float64
}

// NewAnchorState derives the cached Mercator state of anchor
func NewAnchorState(anchor Point) AnchorState {
	m := MercatorFromPoint(anchor)

	return AnchorState{
		X:     m.X,
		Y:     m.Y,
		Z:     m.Z,
		Scale: MeterInMercatorUnits(anchor.Lat),
	}
}

func (s AnchorState) Translation() mgl64.Vec3 {
	return mgl64.Vec3{s.X, s.Y, s.Z}
}

// MetersPerUnit is the inverse of Scale: meters covered by one Mercator unit.
// It decreases toward the poles.
func (s AnchorState) MetersPerUnit() float64 {
	return 1 / s.Scale
}
