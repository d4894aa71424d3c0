package geo

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// Point is a geographic position: latitude and longitude in degrees, altitude in meters.
// Latitude is expected in [-90, 90] and longitude in [-180, 180]; neither is validated.
type Point struct {
	Lat      float64 `json:"lat" toml:"lat" yaml:"lat"`
	Lng      float64 `json:"lng" toml:"lng" yaml:"lng"`
	Altitude float64 `json:"altitude" toml:"altitude" yaml:"altitude"`
}

func NewPoint(lat, lng, altitude float64) Point {
	return Point{Lat: lat, Lng: lng, Altitude: altitude}
}

// FromLatLng builds a Point from an s2 latitude/longitude pair
func FromLatLng(ll s2.LatLng, altitude float64) Point {
	return Point{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees(), Altitude: altitude}
}

// FromOrb builds a Point from an orb point, which stores longitude first
func FromOrb(p orb.Point, altitude float64) Point {
	return Point{Lat: p.Lat(), Lng: p.Lon(), Altitude: altitude}
}

func (p Point) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lng)
}

func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// radians and degrees are the only angle conversions of the package,
// so the forward and inverse paths round identically
func radians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

func degrees(rad float64) float64 {
	return s1.Angle(rad).Degrees()
}
