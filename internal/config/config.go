package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
	"github.com/drawpath/drawpath/server/internal/lib/trajectory"
)

// Config represents the complete application configuration
type Config struct {
	Trajectory TrajectoryConfig `koanf:"trajectory"`
	Store      StoreConfig      `koanf:"store"`
	Vehicle    VehicleConfig    `koanf:"vehicle"`
}

// TrajectoryConfig holds the computation parameters, distances in meters and
// angles in degrees
type TrajectoryConfig struct {
	MaxPointDistance    float64 `koanf:"max_point_distance"`
	MinPointDistance    float64 `koanf:"min_point_distance"`
	MaxPoints           int     `koanf:"max_points"`
	VehicleCircleRadius float64 `koanf:"vehicle_circle_radius"`
	MaxStartingAngle    float64 `koanf:"max_starting_angle"`
	TurningRadius       float64 `koanf:"turning_radius"`
	SectorMargin        float64 `koanf:"sector_margin"`
	SectorSteps         int     `koanf:"sector_steps"`
	ConnectorStep       float64 `koanf:"connector_step"`
	CurveSteps          int     `koanf:"curve_steps"`
	FootprintOffset     float64 `koanf:"footprint_offset"`
	FootprintTolerance  float64 `koanf:"footprint_tolerance"`
	SmoothingDistance   float64 `koanf:"smoothing_distance"`
	StrictCurvature     bool    `koanf:"strict_curvature"`
}

// StoreConfig holds settings of the latest-result store
type StoreConfig struct {
	ResultTTL       time.Duration `koanf:"result_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// VehicleConfig is the default vehicle pose used when a request omits one
type VehicleConfig struct {
	Longitude float64 `koanf:"longitude"`
	Latitude  float64 `koanf:"latitude"`
	Heading   float64 `koanf:"heading"`
}

// ToTrajectory converts TrajectoryConfig to the computation's Config
func (c TrajectoryConfig) ToTrajectory() trajectory.Config {
	return trajectory.Config{
		MaxPointDistance:    c.MaxPointDistance,
		MinPointDistance:    c.MinPointDistance,
		MaxPoints:           c.MaxPoints,
		VehicleCircleRadius: c.VehicleCircleRadius,
		MaxStartingAngle:    c.MaxStartingAngle,
		TurningRadius:       c.TurningRadius,
		SectorMargin:        c.SectorMargin,
		SectorSteps:         c.SectorSteps,
		ConnectorStep:       c.ConnectorStep,
		CurveSteps:          c.CurveSteps,
		FootprintOffset:     c.FootprintOffset,
		FootprintTolerance:  c.FootprintTolerance,
		SmoothingDistance:   c.SmoothingDistance,
		StrictCurvature:     c.StrictCurvature,
	}
}

// FromTrajectory is the inverse of ToTrajectory
func FromTrajectory(c trajectory.Config) TrajectoryConfig {
	return TrajectoryConfig{
		MaxPointDistance:    c.MaxPointDistance,
		MinPointDistance:    c.MinPointDistance,
		MaxPoints:           c.MaxPoints,
		VehicleCircleRadius: c.VehicleCircleRadius,
		MaxStartingAngle:    c.MaxStartingAngle,
		TurningRadius:       c.TurningRadius,
		SectorMargin:        c.SectorMargin,
		SectorSteps:         c.SectorSteps,
		ConnectorStep:       c.ConnectorStep,
		CurveSteps:          c.CurveSteps,
		FootprintOffset:     c.FootprintOffset,
		FootprintTolerance:  c.FootprintTolerance,
		SmoothingDistance:   c.SmoothingDistance,
		StrictCurvature:     c.StrictCurvature,
	}
}

// ToPose converts VehicleConfig to a trajectory Pose
func (v VehicleConfig) ToPose() trajectory.Pose {
	return trajectory.Pose{
		Position: geo.NewPointUnsafe(v.Longitude, v.Latitude),
		Heading:  v.Heading,
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	err := c.Trajectory.ToTrajectory().Validate()
	if c.Store.ResultTTL <= 0 {
		err = multierr.Append(err, fmt.Errorf("store.result_ttl must be positive, got %v", c.Store.ResultTTL))
	}
	if c.Store.CleanupInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("store.cleanup_interval must be positive, got %v", c.Store.CleanupInterval))
	}
	if !geo.IsValid(c.Vehicle.ToPose().Position) {
		err = multierr.Append(err, fmt.Errorf("vehicle position %v,%v is out of range", c.Vehicle.Longitude, c.Vehicle.Latitude))
	}
	return err
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Trajectory: FromTrajectory(trajectory.DefaultConfig()),
		Store: StoreConfig{
			ResultTTL:       30 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Vehicle: VehicleConfig{
			Longitude: 7.1474,
			Latitude:  46.7968,
			Heading:   255,
		},
	}
}
