package trajectory

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

// Below this many segments the fan-out costs more than it saves
const parallelSegmentThreshold = 256

type limitSlot struct {
	point geo.Point
	ok    bool
}

// ComputeBoundary offsets every segment start FootprintOffset meters to both
// sides of the segment. An offset point is kept only if it stays at least
// FootprintOffset-FootprintTolerance away from the whole trajectory; points
// that fold back onto the path in tight turns are dropped so the limits do not
// cross the trajectory.
func ComputeBoundary(t Trajectory, cfg Config) BoundaryLimits {
	limits := BoundaryLimits{Left: Trajectory{}, Right: Trajectory{}}
	segments := len(t) - 1
	if segments < 1 {
		return limits
	}

	polyline := t.Polyline()
	threshold := cfg.FootprintOffset - cfg.FootprintTolerance
	left := make([]limitSlot, segments)
	right := make([]limitSlot, segments)

	keep := func(p geo.Point) bool {
		d, err := geoUtils.PointToPolyline(p, polyline)
		return err == nil && d >= threshold
	}

	forEachSegment(segments, func(i int) {
		bearing := geoUtils.Bearing(t[i], t[i+1])

		r := geoUtils.Destination(t[i], cfg.FootprintOffset, bearing+90)
		right[i] = limitSlot{point: r, ok: keep(r)}

		l := geoUtils.Destination(t[i], cfg.FootprintOffset, bearing-90)
		left[i] = limitSlot{point: l, ok: keep(l)}
	})

	for i := 0; i < segments; i++ {
		if left[i].ok {
			limits.Left = append(limits.Left, left[i].point)
		}
		if right[i].ok {
			limits.Right = append(limits.Right, right[i].point)
		}
	}
	return limits
}

// forEachSegment calls fn for every index in [0, n). Large inputs are split
// into contiguous chunks handled concurrently; fn must only write to state
// owned by its index.
func forEachSegment(n int, fn func(i int)) {
	workers := runtime.GOMAXPROCS(0)
	if n < parallelSegmentThreshold || workers < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}
