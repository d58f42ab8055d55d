package trajectory

import (
	"math/rand"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

// Vehicle position of the drawing app's test site
var fribourg = geo.Point{Longitude: 7.1474, Latitude: 46.7968}

var origin = geo.Point{Longitude: 0, Latitude: 0}

// ray returns the points at the given distances from start along bearing
func ray(start geo.Point, bearing float64, distances ...float64) Trajectory {
	out := make(Trajectory, len(distances))
	for i, d := range distances {
		out[i] = geoUtils.Destination(start, d, bearing)
	}
	return out
}

// straight returns n points spacing meters apart, starting at start
func straight(start geo.Point, bearing, spacing float64, n int) Trajectory {
	distances := make([]float64, n)
	for i := range distances {
		distances[i] = float64(i) * spacing
	}
	return ray(start, bearing, distances...)
}

// scribble returns a deterministic noisy path around start
func scribble(seed int64, start geo.Point, n int, stepMeters float64) Trajectory {
	rng := rand.New(rand.NewSource(seed))
	out := make(Trajectory, 0, n)
	p := start
	bearing := rng.Float64() * 360
	for i := 0; i < n; i++ {
		out = append(out, p)
		bearing += rng.NormFloat64() * 20
		p = geoUtils.Destination(p, rng.Float64()*stepMeters, bearing)
	}
	return out
}
