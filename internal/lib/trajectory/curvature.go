package trajectory

import "math"

// MaxTurnRate is the sharpest heading change per meter, in degrees, a vehicle
// with the given turning radius can drive.
func MaxTurnRate(turningRadius float64) float64 {
	return 180 / (math.Pi * turningRadius)
}

// CheckCurvature reports every vertex where the heading change divided by the
// mean length of its two adjacent segments exceeds MaxTurnRate. Vertices
// between zero-length segments are skipped.
func CheckCurvature(t Trajectory, turningRadius float64) []Violation {
	violations := []Violation{}
	if turningRadius <= 0 {
		return violations
	}
	maxRate := MaxTurnRate(turningRadius)

	for i := 0; i+2 < len(t); i++ {
		angle := math.Abs(geoUtils.Bearing(t[i], t[i+1]) - geoUtils.Bearing(t[i+1], t[i+2]))
		if angle > 180 {
			angle = 360 - angle
		}

		distance := (geoUtils.Distance(t[i], t[i+1]) + geoUtils.Distance(t[i+1], t[i+2])) / 2
		if distance == 0 {
			continue
		}

		if ratio := angle / distance; ratio > maxRate {
			violations = append(violations, Violation{
				Index:    i + 1,
				Point:    t[i+1],
				Angle:    angle,
				Distance: distance,
				Ratio:    ratio,
			})
		}
	}

	return violations
}
