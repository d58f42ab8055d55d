package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawpath/drawpath/server/internal/lib/trajectory"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, trajectory.DefaultConfig(), cfg.Trajectory.ToTrajectory())
	assert.Equal(t, 255.0, cfg.Vehicle.ToPose().Heading)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawpath.yaml")
	yaml := `
trajectory:
  max_point_distance: 0.5
  strict_curvature: true
store:
  result_ttl: 10m
vehicle:
  heading: 90
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("DRAWPATH__TRAJECTORY__TURNING_RADIUS", "4.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Trajectory.MaxPointDistance)
	assert.True(t, cfg.Trajectory.StrictCurvature)
	assert.Equal(t, 4.5, cfg.Trajectory.TurningRadius)
	assert.Equal(t, 10*time.Minute, cfg.Store.ResultTTL)
	assert.Equal(t, 90.0, cfg.Vehicle.Heading)

	// untouched keys keep their defaults
	assert.Equal(t, 3.0, cfg.Trajectory.VehicleCircleRadius)
	assert.Equal(t, 5*time.Minute, cfg.Store.CleanupInterval)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawpath.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trajectory:\n  max_point_distance: -1\nvehicle:\n  latitude: 120\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_point_distance")
	assert.Contains(t, err.Error(), "vehicle position")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "trajectory.max_point_distance", envKey("DRAWPATH__TRAJECTORY__MAX_POINT_DISTANCE"))
	assert.Equal(t, "store.result_ttl", envKey("DRAWPATH__STORE__RESULT_TTL"))
}
