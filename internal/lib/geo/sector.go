package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Sector is a circular wedge centered on a point, approximated as a polygon
type Sector struct {
	Center  Point
	Radius  float64
	Polygon orb.Polygon
}

// newSector builds the wedge from bearing1 clockwise to bearing2. The arc is
// sampled every 360/steps degrees with the end bearing always included. A
// span of 360 degrees or more yields the full circle, an empty span contains
// nothing.
func newSector(g GeoUtils, center Point, radius, bearing1, bearing2 float64, steps int) Sector {
	if steps < 1 {
		steps = 1
	}
	step := 360 / float64(steps)

	// polygon boundaries count as inside, so an empty wedge must have no polygon
	if bearing2 <= bearing1 {
		return Sector{Center: center, Radius: radius}
	}

	ring := orb.Ring{}
	if bearing2-bearing1 >= 360 {
		for i := 0; i < steps; i++ {
			ring = append(ring, g.Destination(center, radius, float64(i)*step).Orb())
		}
		ring = append(ring, ring[0])
		return Sector{Center: center, Radius: radius, Polygon: orb.Polygon{ring}}
	}

	start := normalizeBearing(bearing1)
	end := normalizeBearing(bearing2)
	if end < start {
		end += 360
	}

	ring = append(ring, center.Orb())
	for i := 0; ; i++ {
		alpha := start + float64(i)*step
		if alpha >= end {
			break
		}
		ring = append(ring, g.Destination(center, radius, alpha).Orb())
	}
	ring = append(ring, g.Destination(center, radius, end).Orb())
	ring = append(ring, center.Orb())

	return Sector{Center: center, Radius: radius, Polygon: orb.Polygon{ring}}
}

// Contains reports whether the point lies inside the sector polygon
func (s Sector) Contains(p Point) bool {
	if len(s.Polygon) == 0 {
		return false
	}
	return planar.PolygonContains(s.Polygon, p.Orb())
}

// normalizeBearing maps any bearing into [0, 360)
func normalizeBearing(bearing float64) float64 {
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	return b
}
