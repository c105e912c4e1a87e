// Package geo holds the great-circle math used to measure how far a venue is from a search origin.
package geo

import (
	"math"
	"strconv"
)

// EarthRadiusMiles is the mean radius of Earth used for Haversine distance.
const EarthRadiusMiles = 3959.0

// MetersPerMile converts between the provider's metric radii and the mile-based ranking ceilings.
const MetersPerMile = 1609.344

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// NewPoint creates a Point.
func NewPoint(lat, lng float64) Point {
	return Point{Lat: lat, Lng: lng}
}

// Valid reports whether the point has in-range coordinates.
func (p Point) Valid() bool {
	return ValidateCoordinates(p.Lat, p.Lng)
}

// String formats the point the way the places provider expects its location parameter.
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}

// DistanceTo returns the great-circle distance in miles from p to q.
func (p Point) DistanceTo(q Point) float64 {
	return DistanceMiles(p.Lat, p.Lng, q.Lat, q.Lng)
}

// DistanceMiles returns the great-circle distance in miles between two points
// specified by latitude and longitude in degrees.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Float rounding can push a past 1 for near-antipodal points.
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// MetersToMiles converts a radius in meters to miles.
func MetersToMiles(m float64) float64 {
	return m / MetersPerMile
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
