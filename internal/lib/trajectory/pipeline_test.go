package trajectory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

// drawnPath mimics a hand-drawn line leaving the vehicle along its heading:
// sparse samples with a little wobble.
func drawnPath(pose Pose) Trajectory {
	var path Trajectory
	for i := 0; i <= 10; i++ {
		wobble := 3.0
		if i%2 == 0 {
			wobble = -3.0
		}
		if i == 0 {
			wobble = 0
		}
		path = append(path, geoUtils.Destination(pose.Position, float64(i)*2, pose.Heading+wobble))
	}
	return path
}

// cornerPath leaves along the heading for 10m then turns 90° right for 10m
func cornerPath(pose Pose) Trajectory {
	leg := ray(pose.Position, pose.Heading, 0, 2, 4, 6, 8, 10)
	corner := leg[len(leg)-1]
	return append(leg, ray(corner, pose.Heading+90, 2, 4, 6, 8, 10)...)
}

func TestCompute_DrawnPath(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	pose := Pose{Position: fribourg, Heading: 255}
	raw := drawnPath(pose)
	before := raw.Clone()

	result, err := Compute(ctx, raw, pose, cfg)
	require.NoError(t, err)
	require.NotNil(t, result)

	if diff := cmp.Diff(before, raw); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}

	tr := result.Trajectory
	assert.Equal(t, fribourg, tr[0], "trajectory starts at the vehicle")
	assert.Equal(t, raw[len(raw)-1], tr[len(tr)-1], "trajectory ends where the drawing ends")

	for i := 0; i < len(tr)-1; i++ {
		require.NotEqual(t, tr[i], tr[i+1], "duplicate point at %d", i)
	}

	assert.LessOrEqual(t, len(result.Limits.Left), len(tr)-1)
	assert.LessOrEqual(t, len(result.Limits.Right), len(tr)-1)
	assert.NotEmpty(t, result.Limits.Left)
	assert.NotEmpty(t, result.Limits.Right)

	stats := result.Stats
	assert.Equal(t, len(raw), stats.InputPoints)
	assert.Greater(t, stats.DensifiedPoints, stats.InputPoints)
	assert.Greater(t, stats.TrimmedPoints, 0)
	assert.Equal(t, 51, stats.SmoothWidth)
	assert.Equal(t, cfg.CurveSteps+1, stats.ConnectorPoints)
	assert.Equal(t, len(tr), stats.OutputPoints)
}

func TestCompute_RejectsPathInsideCircle(t *testing.T) {
	cfg := DefaultConfig()
	pose := Pose{Position: origin, Heading: 0}

	raw := ray(origin, 0, 0, 1, 2, 2.9)

	result, err := Compute(context.Background(), raw, pose, cfg)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNeverExitsVehicleRadius)
	assert.True(t, IsRejection(err))
}

func TestCompute_RejectsWrongDirection(t *testing.T) {
	cfg := DefaultConfig()
	pose := Pose{Position: fribourg, Heading: 255}

	// drawn backwards, behind the vehicle
	raw := ray(fribourg, 75, 0, 2, 4, 6)

	result, err := Compute(context.Background(), raw, pose, cfg)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrDoesNotCrossAdmissibleSector)
}

func TestCompute_CurvatureAdvisory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TurningRadius = 1000
	pose := Pose{Position: fribourg, Heading: 255}

	result, err := Compute(context.Background(), cornerPath(pose), pose, cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Violations)

	for _, v := range result.Violations {
		assert.Greater(t, v.Ratio, MaxTurnRate(cfg.TurningRadius))
		assert.Equal(t, result.Trajectory[v.Index], v.Point)
	}
}

func TestCompute_CurvatureStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TurningRadius = 1000
	cfg.StrictCurvature = true
	pose := Pose{Position: fribourg, Heading: 255}

	result, err := Compute(context.Background(), cornerPath(pose), pose, cfg)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCurvatureViolation)
	assert.True(t, IsRejection(err))
}

func TestCompute_PathEndingInsideConnector(t *testing.T) {
	cfg := DefaultConfig()
	pose := Pose{Position: fribourg, Heading: 255}

	raw := Trajectory{fribourg, geoUtils.Destination(fribourg, 3.2, 255)}

	result, err := Compute(context.Background(), raw, pose, cfg)
	require.NoError(t, err)

	// the connector alone reaches the end of the drawing
	assert.Equal(t, result.Stats.ConnectorPoints, len(result.Trajectory))
	assert.Equal(t, raw[1], result.Trajectory[len(result.Trajectory)-1])
}

func TestCompute_InvalidInput(t *testing.T) {
	ctx := context.Background()
	pose := Pose{Position: fribourg, Heading: 255}

	cfg := DefaultConfig()
	cfg.MaxPointDistance = 0
	cfg.TurningRadius = -1
	_, err := Compute(ctx, drawnPath(pose), pose, cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, IsRejection(err))
	assert.Contains(t, err.Error(), "max_point_distance")
	assert.Contains(t, err.Error(), "turning_radius")

	raw := drawnPath(pose)
	raw[3] = geo.NewPointUnsafe(500, 0)
	_, err = Compute(ctx, raw, pose, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Compute(ctx, nil, pose, DefaultConfig())
	assert.ErrorIs(t, err, ErrEmptyTrajectory)
}

func TestCompute_PointBudget(t *testing.T) {
	ctx := context.Background()
	pose := Pose{Position: fribourg, Heading: 255}

	cfg := DefaultConfig()
	cfg.MaxPointDistance = cfg.MinPointDistance / 10
	_, err := Compute(ctx, drawnPath(pose), pose, cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "max_point_distance")

	// sparse kilometer-scale drawing at the default spacing
	raw := straight(fribourg, 255, 100, 30)
	_, err = Compute(ctx, raw, pose, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, IsRejection(err))
	assert.Contains(t, err.Error(), "limit is")

	cfg = DefaultConfig()
	cfg.MaxPoints = 100
	_, err = Compute(ctx, drawnPath(pose), pose, cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.FootprintTolerance = cfg.FootprintOffset
	cfg.SectorSteps = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "footprint_tolerance")
	assert.Contains(t, err.Error(), "sector_steps")

	cfg = DefaultConfig()
	cfg.MinPointDistance = -1
	cfg.MaxPoints = 1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_point_distance")
	assert.Contains(t, err.Error(), "max_points")
}
