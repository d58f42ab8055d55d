package trajectory

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

// Pose is the vehicle state a trajectory is computed for.
// Heading is in degrees, clockwise from geographic north.
type Pose struct {
	Position geo.Point `json:"position"`
	Heading  float64   `json:"heading"`
}

// Trajectory is an ordered point sequence; order is the direction of travel.
type Trajectory []geo.Point

// Clone returns a copy that shares no memory with t
func (t Trajectory) Clone() Trajectory {
	if t == nil {
		return nil
	}
	out := make(Trajectory, len(t))
	copy(out, t)
	return out
}

// Polyline wraps the trajectory for the geo utilities
func (t Trajectory) Polyline() geo.Polyline {
	return geo.Polyline{Points: t}
}

// Config holds the parameters of one computation run. It is a value type:
// copy it, adjust the copy, pass it in.
type Config struct {
	// Resampling threshold in meters
	MaxPointDistance float64 `json:"max_point_distance"`
	// Smallest accepted MaxPointDistance (m)
	MinPointDistance float64 `json:"min_point_distance"`
	// Upper bound on the resampled point count of one path
	MaxPoints int `json:"max_points"`
	// Exclusion radius around the vehicle in meters
	VehicleCircleRadius float64 `json:"vehicle_circle_radius"`
	// Half-width of the admissible heading sector in degrees
	MaxStartingAngle float64 `json:"max_starting_angle"`
	// Minimum turning radius of the vehicle in meters
	TurningRadius float64 `json:"turning_radius"`

	// Extra radius of the admissible sector beyond the exclusion circle (m)
	SectorMargin float64 `json:"sector_margin"`
	// Arc resolution of the sector polygon (steps per full turn)
	SectorSteps int `json:"sector_steps"`
	// Length of the connector's tangent legs at both ends (m)
	ConnectorStep float64 `json:"connector_step"`
	// Minimum number of lookup table intervals on the connector curve
	CurveSteps int `json:"curve_steps"`
	// Lateral offset of the footprint limits, the vehicle half-width (m)
	FootprintOffset float64 `json:"footprint_offset"`
	// Slack below FootprintOffset still accepted for a limit point (m)
	FootprintTolerance float64 `json:"footprint_tolerance"`
	// Path length covered by the smoothing window (m)
	SmoothingDistance float64 `json:"smoothing_distance"`
	// Reject trajectories with curvature violations instead of reporting them
	StrictCurvature bool `json:"strict_curvature"`
}

// DefaultConfig returns the parameters the drawing application ships with
func DefaultConfig() Config {
	return Config{
		MaxPointDistance:    0.2,
		MinPointDistance:    0.05,
		MaxPoints:           10000,
		VehicleCircleRadius: 3,
		MaxStartingAngle:    30,
		TurningRadius:       0.001,

		SectorMargin:       2,
		SectorSteps:        50,
		ConnectorStep:      1,
		CurveSteps:         100,
		FootprintOffset:    1,
		FootprintTolerance: 0.01,
		SmoothingDistance:  10,
	}
}

// Validate checks every parameter and reports all problems at once
func (c Config) Validate() error {
	var err error
	if c.MaxPointDistance <= 0 {
		err = multierr.Append(err, fmt.Errorf("max_point_distance must be positive, got %v", c.MaxPointDistance))
	}
	if c.MinPointDistance < 0 {
		err = multierr.Append(err, fmt.Errorf("min_point_distance must not be negative, got %v", c.MinPointDistance))
	} else if c.MaxPointDistance > 0 && c.MaxPointDistance < c.MinPointDistance {
		err = multierr.Append(err, fmt.Errorf("max_point_distance must be at least min_point_distance %v, got %v",
			c.MinPointDistance, c.MaxPointDistance))
	}
	if c.MaxPoints < 2 {
		err = multierr.Append(err, fmt.Errorf("max_points must be at least 2, got %d", c.MaxPoints))
	}
	if c.VehicleCircleRadius < 0 {
		err = multierr.Append(err, fmt.Errorf("vehicle_circle_radius must not be negative, got %v", c.VehicleCircleRadius))
	}
	if c.MaxStartingAngle < 0 || c.MaxStartingAngle > 180 {
		err = multierr.Append(err, fmt.Errorf("max_starting_angle must be within [0, 180], got %v", c.MaxStartingAngle))
	}
	if c.TurningRadius <= 0 {
		err = multierr.Append(err, fmt.Errorf("turning_radius must be positive, got %v", c.TurningRadius))
	}
	if c.SectorMargin < 0 {
		err = multierr.Append(err, fmt.Errorf("sector_margin must not be negative, got %v", c.SectorMargin))
	}
	if c.SectorSteps < 1 {
		err = multierr.Append(err, fmt.Errorf("sector_steps must be at least 1, got %d", c.SectorSteps))
	}
	if c.ConnectorStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("connector_step must be positive, got %v", c.ConnectorStep))
	}
	if c.CurveSteps < 1 {
		err = multierr.Append(err, fmt.Errorf("curve_steps must be at least 1, got %d", c.CurveSteps))
	}
	if c.FootprintOffset <= 0 {
		err = multierr.Append(err, fmt.Errorf("footprint_offset must be positive, got %v", c.FootprintOffset))
	}
	if c.FootprintTolerance < 0 || c.FootprintTolerance >= c.FootprintOffset {
		err = multierr.Append(err, fmt.Errorf("footprint_tolerance must be within [0, footprint_offset), got %v", c.FootprintTolerance))
	}
	if c.SmoothingDistance < 0 {
		err = multierr.Append(err, fmt.Errorf("smoothing_distance must not be negative, got %v", c.SmoothingDistance))
	}
	return err
}

// SmoothingWidth is the number of points the smoothing window spans for this
// resampling distance. NewSmoother normalizes it further.
func (c Config) SmoothingWidth() int {
	if c.MaxPointDistance <= 0 {
		return minSmoothWidth
	}
	return int(math.Round(c.SmoothingDistance / c.MaxPointDistance))
}

// BoundaryLimits are the footprint polylines on each side of a trajectory
type BoundaryLimits struct {
	Left  Trajectory `json:"left_limit"`
	Right Trajectory `json:"right_limit"`
}

// Violation marks a trajectory vertex whose heading change per meter is
// sharper than the turning radius allows
type Violation struct {
	Index    int       `json:"index"`
	Point    geo.Point `json:"point"`
	Angle    float64   `json:"angle_deg"`
	Distance float64   `json:"distance_m"`
	Ratio    float64   `json:"ratio_deg_per_m"`
}

// Stats describes how each stage changed the point count
type Stats struct {
	InputPoints     int `json:"input_points"`
	DensifiedPoints int `json:"densified_points"`
	TrimmedPoints   int `json:"trimmed_points"`
	SmoothWidth     int `json:"smooth_width"`
	ConnectorPoints int `json:"connector_points"`
	DroppedPoints   int `json:"dropped_points"`
	OutputPoints    int `json:"output_points"`
}

// Result is the output of a successful computation
type Result struct {
	Trajectory Trajectory     `json:"trajectory"`
	Limits     BoundaryLimits `json:"limits"`
	Violations []Violation    `json:"violations"`
	Stats      Stats          `json:"stats"`
}
