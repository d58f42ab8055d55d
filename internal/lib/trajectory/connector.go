package trajectory

import (
	"math"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

// CubicCurve is a cubic Bézier curve in coordinate space
type CubicCurve [4]geo.Point

// At evaluates the curve at parameter u in [0, 1]
func (c CubicCurve) At(u float64) geo.Point {
	mu := 1 - u
	a := mu * mu * mu
	b := 3 * mu * mu * u
	d := 3 * mu * u * u
	e := u * u * u
	return geo.NewPointUnsafe(
		a*c[0].Longitude+b*c[1].Longitude+d*c[2].Longitude+e*c[3].Longitude,
		a*c[0].Latitude+b*c[1].Latitude+d*c[2].Latitude+e*c[3].Latitude,
	)
}

// LUT samples the curve at steps+1 evenly spaced parameters, both ends included
func (c CubicCurve) LUT(steps int) Trajectory {
	if steps < 1 {
		steps = 1
	}
	out := make(Trajectory, steps+1)
	for i := 0; i <= steps; i++ {
		out[i] = c.At(float64(i) / float64(steps))
	}
	// exact endpoints, free of rounding
	out[0] = c[0]
	out[steps] = c[3]
	return out
}

// longestLeg is the longest control polygon edge in meters
func (c CubicCurve) longestLeg() float64 {
	longest := 0.0
	for i := 0; i < 3; i++ {
		longest = math.Max(longest, geoUtils.Distance(c[i], c[i+1]))
	}
	return longest
}

// Connect builds the curve joining the vehicle to the start of the smoothed
// path. Its control points are the vehicle position, a point ConnectorStep
// ahead of the vehicle, the path's first point and the point ConnectorStep
// along the path, so the curve leaves tangent to the heading and joins tangent
// to the path. The returned lookup table starts at the vehicle.
func Connect(pose Pose, t Trajectory, cfg Config) Trajectory {
	if len(t) == 0 {
		return nil
	}

	join, err := geoUtils.Along(t.Polyline(), cfg.ConnectorStep)
	if err != nil {
		join = t[0]
	}

	curve := CubicCurve{
		pose.Position,
		geoUtils.Destination(pose.Position, cfg.ConnectorStep, pose.Heading),
		t[0],
		join,
	}

	return curve.LUT(connectorSteps(curve, cfg))
}

// connectorSteps picks a sampling density that keeps consecutive lookup points
// within MaxPointDistance. A cubic's speed never exceeds three times its
// longest control leg, so that many steps per resampling distance suffice.
func connectorSteps(curve CubicCurve, cfg Config) int {
	steps := cfg.CurveSteps
	if cfg.MaxPointDistance > 0 {
		needed := int(math.Ceil(3 * curve.longestLeg() / cfg.MaxPointDistance))
		steps = max(steps, needed)
	}
	return steps
}
