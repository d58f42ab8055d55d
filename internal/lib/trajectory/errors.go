package trajectory

import "errors"

// Rejection reasons. Every rejection short-circuits the pipeline and no
// geometry is produced.
var (
	ErrEmptyTrajectory              = errors.New("trajectory has no points")
	ErrStartsOutsideVehicleRadius   = errors.New("path starts outside the vehicle circle")
	ErrNeverExitsVehicleRadius      = errors.New("path does not go out of the vehicle circle")
	ErrDoesNotCrossAdmissibleSector = errors.New("path does not leave the vehicle circle within the admissible sector")
	ErrCurvatureViolation           = errors.New("path turns sharper than the vehicle turning radius")
)

var rejections = []error{
	ErrEmptyTrajectory,
	ErrStartsOutsideVehicleRadius,
	ErrNeverExitsVehicleRadius,
	ErrDoesNotCrossAdmissibleSector,
	ErrCurvatureViolation,
}

// IsRejection reports whether err is a trajectory rejection rather than a
// configuration or input failure
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

// Reason returns a stable identifier for a rejection, or "" for other errors
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyTrajectory):
		return "empty_trajectory"
	case errors.Is(err, ErrStartsOutsideVehicleRadius):
		return "starts_outside_vehicle_radius"
	case errors.Is(err, ErrNeverExitsVehicleRadius):
		return "never_exits_vehicle_radius"
	case errors.Is(err, ErrDoesNotCrossAdmissibleSector):
		return "does_not_cross_admissible_sector"
	case errors.Is(err, ErrCurvatureViolation):
		return "curvature_violation"
	}
	return ""
}
