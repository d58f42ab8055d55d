package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/twpayne/go-polyline"
)

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// Distance calculates great-circle distance between two points using the Haversine formula
func (g *geoUtils) Distance(p1, p2 Point) float64 {
	if p1 == p2 {
		return 0
	}
	return geo.DistanceHaversine(p1.Orb(), p2.Orb())
}

// Bearing calculates the initial bearing from one point to another
func (g *geoUtils) Bearing(from, to Point) float64 {
	return geo.Bearing(from.Orb(), to.Orb())
}

// Destination projects origin along bearing on the sphere
func (g *geoUtils) Destination(origin Point, distanceMeters, bearing float64) Point {
	return FromOrb(geo.PointAtBearingAndDistance(origin.Orb(), bearing, distanceMeters))
}

// Along walks the polyline and returns the point distanceMeters from its start.
// Distances past the end return the last point.
func (g *geoUtils) Along(polyline Polyline, distanceMeters float64) (Point, error) {
	points := polyline.Points
	if len(points) == 0 {
		return Point{}, errors.New("polyline has no points")
	}
	if distanceMeters <= 0 || len(points) == 1 {
		return points[0], nil
	}

	travelled := 0.0
	for i := 0; i < len(points)-1; i++ {
		segment := g.Distance(points[i], points[i+1])
		if travelled+segment >= distanceMeters {
			remaining := distanceMeters - travelled
			if remaining == 0 {
				return points[i], nil
			}
			return g.Destination(points[i], remaining, g.Bearing(points[i], points[i+1])), nil
		}
		travelled += segment
	}

	return points[len(points)-1], nil
}

// PointToPolyline calculates minimum distance from point to polyline
func (g *geoUtils) PointToPolyline(point Point, polyline Polyline) (float64, error) {
	if !isValidCoordinate(point) {
		return 0, errors.New("invalid point coordinates")
	}

	if len(polyline.Points) == 0 {
		return 0, errors.New("polyline has no points")
	}

	if len(polyline.Points) == 1 {
		// Single point polyline - return point to point distance
		return g.Distance(point, polyline.Points[0]), nil
	}

	minDistance := math.Inf(1)

	// Check distance to each segment of the polyline
	for i := 0; i < len(polyline.Points)-1; i++ {
		distance := g.pointToSegmentDistance(point, polyline.Points[i], polyline.Points[i+1])
		if distance < minDistance {
			minDistance = distance
		}
	}

	return minDistance, nil
}

// pointToSegmentDistance projects the point onto the segment in coordinate space and
// measures the great-circle distance to the projection. Accurate at the meter scale
// the trajectory pipeline works at, where a cross-track formula loses precision.
func (g *geoUtils) pointToSegmentDistance(point, segmentStart, segmentEnd Point) float64 {
	vx := segmentEnd.Longitude - segmentStart.Longitude
	vy := segmentEnd.Latitude - segmentStart.Latitude
	wx := point.Longitude - segmentStart.Longitude
	wy := point.Latitude - segmentStart.Latitude

	c1 := wx*vx + wy*vy
	if c1 <= 0 {
		return g.Distance(point, segmentStart)
	}

	c2 := vx*vx + vy*vy
	if c2 <= c1 {
		return g.Distance(point, segmentEnd)
	}

	t := c1 / c2
	return g.Distance(point, interpolatePoint(segmentStart, segmentEnd, t))
}

// Sector builds the wedge polygon for the given bearings
func (g *geoUtils) Sector(center Point, radiusMeters, bearing1, bearing2 float64, steps int) Sector {
	return newSector(g, center, radiusMeters, bearing1, bearing2, steps)
}

// DecodePolyline decodes Google polyline string to point sequence
func (g *geoUtils) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	// Use go-polyline library to decode
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("failed to decode polyline: " + err.Error())
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}

		// Validate decoded coordinates
		if !isValidCoordinate(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}

// EncodePolyline encodes points as a Google polyline string (5 digit precision)
func (g *geoUtils) EncodePolyline(points []Point) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}

// interpolatePoint calculates a point between two points in coordinate space
// t=0 returns start, t=1 returns end, t=0.5 returns midpoint
func interpolatePoint(start, end Point, t float64) Point {
	return Point{
		Longitude: start.Longitude + t*(end.Longitude-start.Longitude),
		Latitude:  start.Latitude + t*(end.Latitude-start.Latitude),
	}
}

// Midpoint returns the arithmetic mean of the two coordinates
func Midpoint(a, b Point) Point {
	return Point{
		Longitude: (a.Longitude + b.Longitude) / 2,
		Latitude:  (a.Latitude + b.Latitude) / 2,
	}
}

// Coordinate Conversion Utilities

// NewPoint creates a Point from longitude and latitude values with validation
func NewPoint(longitude, latitude float64) (Point, error) {
	point := Point{Longitude: longitude, Latitude: latitude}
	if !isValidCoordinate(point) {
		return Point{}, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}
	return point, nil
}

// NewPointUnsafe creates a Point without validation (for performance-critical paths)
func NewPointUnsafe(longitude, latitude float64) Point {
	return Point{Longitude: longitude, Latitude: latitude}
}

// PointsFromPairs converts [lng, lat] pairs to points, validating each one
func PointsFromPairs(pairs [][2]float64) ([]Point, error) {
	points := make([]Point, len(pairs))
	for i, pair := range pairs {
		p, err := NewPoint(pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return points, nil
}

// Pairs converts points to [lng, lat] pairs
func Pairs(points []Point) [][2]float64 {
	pairs := make([][2]float64, len(points))
	for i, p := range points {
		pairs[i] = p.Pair()
	}
	return pairs
}

// LineString converts points to an orb.LineString
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.Orb()
	}
	return ls
}

// IsValid reports whether the point is a valid WGS84 coordinate
func IsValid(point Point) bool {
	return isValidCoordinate(point)
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(point Point) bool {
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}
