package trajectory

import (
	"math"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

var geoUtils = geo.NewGeoUtils()

// maxSubdivisionDepth bounds how often one input gap is halved. 64 halvings
// exhaust float64 resolution for any gap on earth.
const maxSubdivisionDepth = 64

// Densify inserts coordinate midpoints, left to right, until no two
// consecutive points are more than maxPointDistance meters apart. The input is
// not modified.
func Densify(t Trajectory, maxPointDistance float64) Trajectory {
	if len(t) < 2 || maxPointDistance <= 0 {
		return t.Clone()
	}

	out := make(Trajectory, 0, len(t))
	out = append(out, t[0])
	for i := 1; i < len(t); i++ {
		out = appendSubdivided(out, t[i-1], t[i], maxPointDistance, 0)
	}
	return out
}

// appendSubdivided appends the points after a up to and including b. The left
// half of a gap is always finished before the right half, which yields the
// same sequence as repeatedly inserting a midpoint and re-checking the gap at
// the same index.
func appendSubdivided(out Trajectory, a, b geo.Point, maxPointDistance float64, depth int) Trajectory {
	if depth < maxSubdivisionDepth && geoUtils.Distance(a, b) > maxPointDistance {
		mid := geo.Midpoint(a, b)
		// no representable point left between a and b
		if mid != a && mid != b {
			out = appendSubdivided(out, a, mid, maxPointDistance, depth+1)
			return appendSubdivided(out, mid, b, maxPointDistance, depth+1)
		}
	}
	return append(out, b)
}

// DensifiedLen estimates len(Densify(t, maxPointDistance)) without building
// it: a gap of d meters is halved ceil(log2(d/maxPointDistance)) times. The
// result saturates at math.MaxInt.
func DensifiedLen(t Trajectory, maxPointDistance float64) int {
	if len(t) < 2 || maxPointDistance <= 0 {
		return len(t)
	}

	total := 1.0
	for i := 1; i < len(t); i++ {
		d := geoUtils.Distance(t[i-1], t[i])
		if d <= maxPointDistance {
			total++
			continue
		}
		halvings := math.Min(math.Ceil(math.Log2(d/maxPointDistance)), maxSubdivisionDepth)
		total += math.Exp2(halvings)
	}

	if total >= math.MaxInt {
		return math.MaxInt
	}
	return int(total)
}
