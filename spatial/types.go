// Copyright 2025 The Alumap Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint builds a point out of nullable coordinates. It returns nil unless
// both coordinates are known.
func NewPoint(lat, lng *float64) *Point {
	if lat == nil || lng == nil {
		return nil
	}

	return &Point{Lat: *lat, Lng: *lng}
}

// centralAngle returns the haversine central angle between two points, in radians.
func centralAngle(p, other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceKm returns the great-circle distance between a and b in kilometers.
// The second return value is false when either point is unknown.
func DistanceKm(a, b *Point) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}

	return earthRadiusKm * centralAngle(a, b), true
}

// Centroid returns the arithmetic mean of the given points. The zero Point is
// returned for an empty slice.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumLat, sumLng float64

	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}

	n := float64(len(points))

	return Point{Lat: sumLat / n, Lng: sumLng / n}
}

// ValidateCoordinates checks that lat and lng are within the WGS84 ranges.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got %f)", lat)
	}

	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got %f)", lng)
	}

	return nil
}
