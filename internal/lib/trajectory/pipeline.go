package trajectory

import (
	"context"
	"errors"
	"fmt"

	"github.com/dpup/prefab/logging"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

// ErrInvalidInput is returned for malformed requests: bad coordinates or an
// invalid configuration. It is not a rejection of the drawn path.
var ErrInvalidInput = errors.New("invalid input")

// Compute turns a drawn path into a drivable trajectory with its footprint
// limits. It either returns a complete result or an error, never both.
//
// Stages run in this order: densify, validate, smooth, connect, stitch,
// boundary, curvature. Densifying first keeps the first point outside the
// vehicle circle within one resampling step of the circle edge.
func Compute(ctx context.Context, raw Trajectory, pose Pose, cfg Config) (*Result, error) {
	// callers outside prefab's request middleware carry no logger
	ctx = logging.EnsureLogger(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: configuration: %v", ErrInvalidInput, err)
	}
	if !geo.IsValid(pose.Position) {
		return nil, fmt.Errorf("%w: vehicle position %v", ErrInvalidInput, pose.Position)
	}
	for i, p := range raw {
		if !geo.IsValid(p) {
			return nil, fmt.Errorf("%w: coordinate %d (%v)", ErrInvalidInput, i, p)
		}
	}

	if n := DensifiedLen(raw, cfg.MaxPointDistance); n > cfg.MaxPoints {
		return nil, fmt.Errorf("%w: path resamples to about %d points at %vm spacing, limit is %d",
			ErrInvalidInput, n, cfg.MaxPointDistance, cfg.MaxPoints)
	}

	stats := Stats{InputPoints: len(raw)}

	densified := Densify(raw, cfg.MaxPointDistance)
	stats.DensifiedPoints = len(densified)
	logging.Debugw(ctx, "trajectory: densified", "input", len(raw), "output", len(densified))

	validated, err := Validate(densified, pose, cfg)
	if err != nil {
		logging.Infow(ctx, "trajectory: path rejected", "reason", Reason(err), "error", err)
		return nil, err
	}
	stats.TrimmedPoints = len(densified) - len(validated)

	smoother := NewSmoother(cfg.SmoothingWidth())
	smoothed := smoother.Filter(validated)
	stats.SmoothWidth = smoother.Width()
	logging.Debugw(ctx, "trajectory: smoothed", "width", smoother.Width(), "points", len(smoothed))

	connector := Connect(pose, smoothed, cfg)
	stats.ConnectorPoints = len(connector)

	stitched := Stitch(connector, smoothed, pose.Position)
	stats.DroppedPoints = len(connector) + len(smoothed) - len(stitched)
	stats.OutputPoints = len(stitched)

	limits := ComputeBoundary(stitched, cfg)
	logging.Debugw(ctx, "trajectory: limits computed",
		"left", len(limits.Left), "right", len(limits.Right))

	violations := CheckCurvature(stitched, cfg.TurningRadius)
	if len(violations) > 0 {
		first := violations[0]
		logging.Warnw(ctx, "trajectory: corner too sharp",
			"violations", len(violations), "index", first.Index,
			"ratio", first.Ratio, "max_ratio", MaxTurnRate(cfg.TurningRadius))

		if cfg.StrictCurvature {
			return nil, fmt.Errorf("%w: %d vertices, first at index %d turns %.1f°/m, max is %.1f°/m",
				ErrCurvatureViolation, len(violations), first.Index, first.Ratio, MaxTurnRate(cfg.TurningRadius))
		}
	}

	logging.Infow(ctx, "trajectory: computed",
		"points", len(stitched), "connector", len(connector), "violations", len(violations))

	return &Result{
		Trajectory: stitched,
		Limits:     limits,
		Violations: violations,
		Stats:      stats,
	}, nil
}
