package trajectory

import (
	"fmt"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

// Validate checks that a drawn path leaves the vehicle circle in a direction
// the vehicle can take. It returns the path without its leading points inside
// the circle; the input is not modified.
func Validate(t Trajectory, pose Pose, cfg Config) (Trajectory, error) {
	if len(t) == 0 {
		return nil, ErrEmptyTrajectory
	}

	vehicle := pose.Position
	radius := cfg.VehicleCircleRadius

	if d := geoUtils.Distance(t[0], vehicle); d > radius {
		return nil, fmt.Errorf("%w: first point is %.2fm from the vehicle, circle radius is %.2fm",
			ErrStartsOutsideVehicleRadius, d, radius)
	}

	first := 0
	for first < len(t) && geoUtils.Distance(t[first], vehicle) <= radius {
		first++
	}
	if first == len(t) {
		return nil, fmt.Errorf("%w: all %d points lie within %.2fm of the vehicle",
			ErrNeverExitsVehicleRadius, len(t), radius)
	}

	exit := t[first]
	if !AdmissibleSector(pose, cfg).Contains(exit) {
		return nil, fmt.Errorf("%w: exit point at bearing %.1f° and %.2fm, allowed %.1f° ± %.1f° within %.2fm",
			ErrDoesNotCrossAdmissibleSector,
			geoUtils.Bearing(vehicle, exit), geoUtils.Distance(vehicle, exit),
			pose.Heading, cfg.MaxStartingAngle, radius+cfg.SectorMargin)
	}

	return t[first:].Clone(), nil
}

// AdmissibleSector is the wedge a path has to leave the vehicle circle
// through. It reaches SectorMargin beyond the circle so the first point outside
// the circle of a densified path always falls within its radius.
// A MaxStartingAngle of 0 gives an empty sector that no path crosses.
func AdmissibleSector(pose Pose, cfg Config) geo.Sector {
	return geoUtils.Sector(
		pose.Position,
		cfg.VehicleCircleRadius+cfg.SectorMargin,
		pose.Heading-cfg.MaxStartingAngle,
		pose.Heading+cfg.MaxStartingAngle,
		cfg.SectorSteps,
	)
}
