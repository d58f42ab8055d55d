package geo

import "github.com/paulmach/orb"

// Point represents a geographic coordinate
type Point struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
}

// Orb converts the point to an orb.Point ([lng, lat])
func (p Point) Orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// Pair returns the point as a [lng, lat] pair, the layout map renderers expect
func (p Point) Pair() [2]float64 {
	return [2]float64{p.Longitude, p.Latitude}
}

// FromOrb converts an orb.Point to a Point
func FromOrb(p orb.Point) Point {
	return Point{Longitude: p.Lon(), Latitude: p.Lat()}
}

// Polyline represents an encoded polyline with optional decoded points
type Polyline struct {
	EncodedPolyline string  `json:"encoded_polyline,omitempty"`
	Points          []Point `json:"points"`
}

// LineString converts the polyline points to an orb.LineString
func (p Polyline) LineString() orb.LineString {
	return LineString(p.Points)
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Great-circle distance between two points in meters
	Distance(p1, p2 Point) float64

	// Initial bearing from one point to another in degrees, (-180, 180]
	Bearing(from, to Point) float64

	// Point reached by travelling distanceMeters from origin along bearing
	Destination(origin Point, distanceMeters, bearing float64) Point

	// Point distanceMeters along the polyline, clamped to its last point
	Along(polyline Polyline, distanceMeters float64) (Point, error)

	// Minimum distance from point to polyline in meters
	PointToPolyline(point Point, polyline Polyline) (float64, error)

	// Angular wedge around center between two bearings
	Sector(center Point, radiusMeters, bearing1, bearing2 float64, steps int) Sector

	// Decode Google polyline string to point sequence
	DecodePolyline(encoded string) ([]Point, error)

	// Encode point sequence as a Google polyline string
	EncodePolyline(points []Point) string
}

// NewGeoUtils is implemented in geo.go
