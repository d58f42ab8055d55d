package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides. Nested keys are separated by a
// double underscore: DRAWPATH__TRAJECTORY__TURNING_RADIUS=5
const EnvPrefix = "DRAWPATH__"

// Load layers defaults, an optional YAML file and the environment, in that
// order, and validates the result
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

func defaults() map[string]interface{} {
	d := DefaultConfig()
	t := d.Trajectory
	return map[string]interface{}{
		"trajectory.max_point_distance":    t.MaxPointDistance,
		"trajectory.min_point_distance":    t.MinPointDistance,
		"trajectory.max_points":            t.MaxPoints,
		"trajectory.vehicle_circle_radius": t.VehicleCircleRadius,
		"trajectory.max_starting_angle":    t.MaxStartingAngle,
		"trajectory.turning_radius":        t.TurningRadius,
		"trajectory.sector_margin":         t.SectorMargin,
		"trajectory.sector_steps":          t.SectorSteps,
		"trajectory.connector_step":        t.ConnectorStep,
		"trajectory.curve_steps":           t.CurveSteps,
		"trajectory.footprint_offset":      t.FootprintOffset,
		"trajectory.footprint_tolerance":   t.FootprintTolerance,
		"trajectory.smoothing_distance":    t.SmoothingDistance,
		"trajectory.strict_curvature":      t.StrictCurvature,
		"store.result_ttl":                 d.Store.ResultTTL,
		"store.cleanup_interval":           d.Store.CleanupInterval,
		"vehicle.longitude":                d.Vehicle.Longitude,
		"vehicle.latitude":                 d.Vehicle.Latitude,
		"vehicle.heading":                  d.Vehicle.Heading,
	}
}
