package trajectory

import "github.com/drawpath/drawpath/server/internal/lib/geo"

// Stitch appends the part of source the connector does not already cover.
// Leading source points no farther from the vehicle than the connector's last
// point are dropped, so the seam never repeats a location. When every source
// point is dropped the result is the connector alone.
func Stitch(connector, source Trajectory, vehicle geo.Point) Trajectory {
	out := make(Trajectory, 0, len(connector)+len(source))
	out = append(out, connector...)
	if len(connector) == 0 {
		return append(out, source...)
	}

	reach := geoUtils.Distance(vehicle, connector[len(connector)-1])

	start := 0
	for start < len(source) && geoUtils.Distance(source[start], vehicle) <= reach {
		start++
	}

	return append(out, source[start:]...)
}
