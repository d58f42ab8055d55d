package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func northConfig() (Pose, Config) {
	cfg := DefaultConfig()
	cfg.VehicleCircleRadius = 3
	cfg.MaxStartingAngle = 30
	return Pose{Position: origin, Heading: 0}, cfg
}

func TestValidate_RejectsExitOutsideSector(t *testing.T) {
	pose, cfg := northConfig()

	// leaves the circle heading north-east, 45° off the vehicle heading
	path := ray(origin, 45, 0.5, 1.1, 1.7, 2.3, 2.9, 3.1, 3.5, 4.5)

	_, err := Validate(path, pose, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDoesNotCrossAdmissibleSector)
	assert.True(t, IsRejection(err))
}

func TestValidate_ZeroStartingAngleRejectsEverything(t *testing.T) {
	pose, cfg := northConfig()
	cfg.MaxStartingAngle = 0

	sector := AdmissibleSector(pose, cfg)
	assert.Empty(t, sector.Polygon)

	// exactly along the heading
	path := ray(origin, 0, 0.5, 1.1, 1.7, 2.3, 2.9, 3.1, 3.5, 4.5)
	_, err := Validate(path, pose, cfg)
	assert.ErrorIs(t, err, ErrDoesNotCrossAdmissibleSector)

	// the same path is fine with any opening at all
	cfg.MaxStartingAngle = 1
	_, err = Validate(path, pose, cfg)
	assert.NoError(t, err)
}

func TestValidate_RejectsPathInsideCircle(t *testing.T) {
	pose, cfg := northConfig()

	path := ray(origin, 0, 0.1, 0.9, 1.7, 2.5, 2.9)
	path = append(path, ray(origin, 120, 1, 2)...)

	_, err := Validate(path, pose, cfg)
	assert.ErrorIs(t, err, ErrNeverExitsVehicleRadius)
}

func TestValidate_RejectsStartOutsideCircle(t *testing.T) {
	pose, cfg := northConfig()

	path := ray(origin, 0, 5, 6, 7)

	_, err := Validate(path, pose, cfg)
	assert.ErrorIs(t, err, ErrStartsOutsideVehicleRadius)
}

func TestValidate_RejectsEmptyPath(t *testing.T) {
	pose, cfg := northConfig()

	_, err := Validate(nil, pose, cfg)
	assert.ErrorIs(t, err, ErrEmptyTrajectory)
}

func TestValidate_RejectsJumpBeyondSector(t *testing.T) {
	pose, cfg := northConfig()

	// right direction but the first point outside is past the sector radius
	path := ray(origin, 0, 0.5, 1, 8)

	_, err := Validate(path, pose, cfg)
	assert.ErrorIs(t, err, ErrDoesNotCrossAdmissibleSector)
}

func TestValidate_TrimsLeadingPoints(t *testing.T) {
	pose, cfg := northConfig()

	path := ray(origin, 10, 0.1, 0.7, 1.3, 1.9, 2.5, 2.9, 3.1, 3.7, 4.3, 10)
	before := path.Clone()

	out, err := Validate(path, pose, cfg)
	require.NoError(t, err)

	assert.Equal(t, before, path, "input must not be modified")
	require.Len(t, out, 4)
	assert.Equal(t, path[6], out[0])
	assert.Greater(t, geoUtils.Distance(out[0], origin), cfg.VehicleCircleRadius)
}

func TestValidate_HeadingAcrossNorth(t *testing.T) {
	pose, cfg := northConfig()
	pose.Heading = 350

	_, err := Validate(ray(origin, 10, 1, 2, 3.2), pose, cfg)
	assert.NoError(t, err)

	_, err = Validate(ray(origin, 30, 1, 2, 3.2), pose, cfg)
	assert.ErrorIs(t, err, ErrDoesNotCrossAdmissibleSector)
}

func TestReason(t *testing.T) {
	pose, cfg := northConfig()

	_, err := Validate(ray(origin, 0, 1), pose, cfg)
	assert.Equal(t, "never_exits_vehicle_radius", Reason(err))

	assert.Equal(t, "", Reason(assert.AnError))
	assert.False(t, IsRejection(assert.AnError))
	assert.False(t, IsRejection(ErrInvalidInput))
}
