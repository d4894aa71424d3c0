package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
	orbgeo "github.com/paulmach/orb/geo"
)

// EarthRadius is the mean Earth radius (m) used by the host map's projection
const EarthRadius = 6371008.8

// EarthCircumference is the equatorial circumference (m) of the EarthRadius sphere
const EarthCircumference = 2 * math.Pi * EarthRadius

// LocalAccuracyRadius is the distance (m) from the anchor beyond which the
// local metric approximation of ToLocal and LocalToLatLng degrades noticeably
const LocalAccuracyRadius = 10000.0

// LatLngToXY projects a point with spherical Mercator, in meters.
// x grows eastward, y grows northward.
func LatLngToXY(p Point) r2.Point {
	return r2.Point{
		X: EarthRadius * radians(p.Lng),
		Y: EarthRadius * math.Log(math.Tan(math.Pi/4+radians(p.Lat)/2)),
	}
}

// XYToLatLng is the exact inverse of LatLngToXY. Altitude is left at zero.
func XYToLatLng(xy r2.Point) Point {
	return Point{
		Lat: degrees(2*math.Atan(math.Exp(xy.Y/EarthRadius)) - math.Pi/2),
		Lng: degrees(xy.X / EarthRadius),
	}
}

// ToLocal returns the position of p relative to anchor in meters, as
// (east, up, north): geographic up is +y, like the renderer's canonical up.
// The horizontal Mercator offsets are scaled by the cosine of the anchor
// latitude, which is only accurate near the anchor.
func ToLocal(p, anchor Point) mgl64.Vec3 {
	pt := LatLngToXY(p)
	ref := LatLngToXY(anchor)
	k := math.Cos(radians(anchor.Lat))

	return mgl64.Vec3{
		(pt.X - ref.X) * k,
		p.Altitude - anchor.Altitude,
		(pt.Y - ref.Y) * k,
	}
}

// LocalToLatLng converts the horizontal part of a ToLocal offset back to a
// geographic point: x is the eastward and z the northward offset in meters.
// The result keeps the anchor altitude.
func LocalToLatLng(x, z float64, anchor Point) Point {
	metersPerDegreeLat := radians(1) * EarthRadius
	metersPerDegreeLng := metersPerDegreeLat * math.Cos(radians(anchor.Lat))

	return Point{
		Lat:      anchor.Lat + z/metersPerDegreeLat,
		Lng:      anchor.Lng + x/metersPerDegreeLng,
		Altitude: anchor.Altitude,
	}
}

// DistanceMeters is the great-circle distance between two points, ignoring altitude
func DistanceMeters(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.Orb(), b.Orb())
}
