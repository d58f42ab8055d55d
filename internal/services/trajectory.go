package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/drawpath/drawpath/server/internal/cache"
	"github.com/drawpath/drawpath/server/internal/config"
	"github.com/drawpath/drawpath/server/internal/lib/export"
	"github.com/drawpath/drawpath/server/internal/lib/geo"
	"github.com/drawpath/drawpath/server/internal/lib/trajectory"
)

// ErrorDomain is the ErrorInfo domain attached to rejection statuses
const ErrorDomain = "trajectory.drawpath"

// DefaultVehicleID keys results of requests that do not name a vehicle
const DefaultVehicleID = "default"

// ResultStore keeps the latest successful response per vehicle
type ResultStore interface {
	Set(key string, data interface{}, source string) error
	GetWithMetadata(key string, result interface{}) (*cache.CacheEntry, bool, error)
}

// VehicleState identifies a vehicle and its pose. Heading is in degrees
// clockwise from north.
type VehicleState struct {
	ID        string  `json:"id"`
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
	Heading   float64 `json:"heading"`
}

// ConfigOverrides replaces individual computation parameters for one request
type ConfigOverrides struct {
	MaxPointDistance    *float64 `json:"max_point_distance,omitempty"`
	VehicleCircleRadius *float64 `json:"vehicle_circle_radius,omitempty"`
	MaxStartingAngle    *float64 `json:"max_starting_angle,omitempty"`
	TurningRadius       *float64 `json:"turning_radius,omitempty"`
	FootprintOffset     *float64 `json:"footprint_offset,omitempty"`
	SmoothingDistance   *float64 `json:"smoothing_distance,omitempty"`
	StrictCurvature     *bool    `json:"strict_curvature,omitempty"`
}

// Apply returns base with every set override applied
func (o *ConfigOverrides) Apply(base trajectory.Config) trajectory.Config {
	if o == nil {
		return base
	}
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.MaxPointDistance, o.MaxPointDistance)
	set(&base.VehicleCircleRadius, o.VehicleCircleRadius)
	set(&base.MaxStartingAngle, o.MaxStartingAngle)
	set(&base.TurningRadius, o.TurningRadius)
	set(&base.FootprintOffset, o.FootprintOffset)
	set(&base.SmoothingDistance, o.SmoothingDistance)
	if o.StrictCurvature != nil {
		base.StrictCurvature = *o.StrictCurvature
	}
	return base
}

// ComputeRequest carries one drawn path, either as lng/lat pairs or as a
// Google encoded polyline
type ComputeRequest struct {
	Vehicle     *VehicleState    `json:"vehicle,omitempty"`
	Path        [][2]float64     `json:"path,omitempty"`
	EncodedPath string           `json:"encoded_path,omitempty"`
	Config      *ConfigOverrides `json:"config,omitempty"`
}

// ComputeResponse is a successful computation. Lines are lng/lat pairs.
type ComputeResponse struct {
	RequestID  string                     `json:"request_id"`
	VehicleID  string                     `json:"vehicle_id"`
	Trajectory [][2]float64               `json:"trajectory"`
	LeftLimit  [][2]float64               `json:"left_limit"`
	RightLimit [][2]float64               `json:"right_limit"`
	Violations []trajectory.Violation     `json:"violations"`
	Stats      trajectory.Stats           `json:"stats"`
	Polylines  export.Polylines           `json:"polylines"`
	GeoJSON    *geojson.FeatureCollection `json:"geojson"`
	ComputedAt time.Time                  `json:"computed_at"`
}

// TrajectoryService computes trajectories and remembers the latest one per
// vehicle
type TrajectoryService struct {
	store    ResultStore
	config   *config.Config
	geoUtils geo.GeoUtils
	now      func() time.Time
}

// NewTrajectoryService creates a new TrajectoryService
func NewTrajectoryService(store ResultStore, cfg *config.Config) *TrajectoryService {
	return &TrajectoryService{
		store:    store,
		config:   cfg,
		geoUtils: geo.NewGeoUtils(),
		now:      time.Now,
	}
}

// Compute runs the pipeline for one request. Rejections come back as
// FailedPrecondition statuses carrying an ErrorInfo with the reason; the
// stored result for the vehicle is only replaced on success.
func (s *TrajectoryService) Compute(ctx context.Context, req *ComputeRequest) (*ComputeResponse, error) {
	ctx = logging.EnsureLogger(ctx)
	start := s.now()
	requestID := uuid.NewString()

	vehicleID, pose := s.pose(req.Vehicle)
	cfg := req.Config.Apply(s.config.Trajectory.ToTrajectory())

	raw, err := s.path(req)
	if err != nil {
		observe("invalid_input", start, s.now())
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logging.Debugw(ctx, "Compute called", "request_id", requestID, "vehicle_id", vehicleID, "points", len(raw))

	result, err := trajectory.Compute(ctx, raw, pose, cfg)
	if err != nil {
		observe(outcome(err), start, s.now())
		return nil, toStatus(err)
	}

	resp := &ComputeResponse{
		RequestID:  requestID,
		VehicleID:  vehicleID,
		Trajectory: geo.Pairs(result.Trajectory),
		LeftLimit:  geo.Pairs(result.Limits.Left),
		RightLimit: geo.Pairs(result.Limits.Right),
		Violations: result.Violations,
		Stats:      result.Stats,
		Polylines:  export.EncodePolylines(s.geoUtils, result),
		ComputedAt: s.now(),
	}
	sector := trajectory.AdmissibleSector(pose, cfg)
	resp.GeoJSON = export.FeatureCollection(export.Scene{
		Raw:    raw,
		Pose:   pose,
		Sector: &sector,
		Result: result,
	})

	if err := s.store.Set(vehicleID, resp, requestID); err != nil {
		logging.Errorw(ctx, "Failed to store latest trajectory",
			"request_id", requestID, "vehicle_id", vehicleID, "error", err)
	}

	observe("ok", start, s.now())
	outputPoints.Observe(float64(len(result.Trajectory)))
	if len(result.Violations) > 0 {
		curvatureWarnings.Inc()
	}
	return resp, nil
}

// GetLatest returns the most recent successful computation for a vehicle
func (s *TrajectoryService) GetLatest(ctx context.Context, vehicleID string) (*ComputeResponse, error) {
	ctx = logging.EnsureLogger(ctx)
	if vehicleID == "" {
		return nil, status.Error(codes.InvalidArgument, "vehicle id is required")
	}

	var resp ComputeResponse
	_, found, err := s.store.GetWithMetadata(vehicleID, &resp)
	if err != nil {
		logging.Errorw(ctx, "Failed to read latest trajectory", "vehicle_id", vehicleID, "error", err)
		return nil, status.Error(codes.Internal, "failed to read stored trajectory")
	}
	if !found {
		return nil, status.Errorf(codes.NotFound, "no trajectory for vehicle %q", vehicleID)
	}
	return &resp, nil
}

func (s *TrajectoryService) pose(v *VehicleState) (string, trajectory.Pose) {
	if v == nil {
		return DefaultVehicleID, s.config.Vehicle.ToPose()
	}
	id := v.ID
	if id == "" {
		id = DefaultVehicleID
	}
	return id, trajectory.Pose{
		Position: geo.NewPointUnsafe(v.Longitude, v.Latitude),
		Heading:  v.Heading,
	}
}

func (s *TrajectoryService) path(req *ComputeRequest) (trajectory.Trajectory, error) {
	switch {
	case len(req.Path) > 0 && req.EncodedPath != "":
		return nil, errors.New("path and encoded_path are mutually exclusive")
	case req.EncodedPath != "":
		points, err := s.geoUtils.DecodePolyline(req.EncodedPath)
		if err != nil {
			return nil, fmt.Errorf("encoded_path: %w", err)
		}
		return points, nil
	default:
		points, err := geo.PointsFromPairs(req.Path)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		return points, nil
	}
}

// toStatus maps pipeline errors onto gRPC status codes
func toStatus(err error) error {
	switch {
	case trajectory.IsRejection(err):
		st, detailErr := status.New(codes.FailedPrecondition, err.Error()).WithDetails(&errdetails.ErrorInfo{
			Reason: trajectory.Reason(err),
			Domain: ErrorDomain,
		})
		if detailErr != nil {
			return status.Error(codes.FailedPrecondition, err.Error())
		}
		return st.Err()
	case errors.Is(err, trajectory.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, err.Error())
}

// outcome is the metric label for a failed computation
func outcome(err error) string {
	if reason := trajectory.Reason(err); reason != "" {
		return reason
	}
	if errors.Is(err, trajectory.ErrInvalidInput) {
		return "invalid_input"
	}
	return "error"
}
