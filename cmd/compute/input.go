package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
	"github.com/drawpath/drawpath/server/internal/lib/trajectory"
)

var errNoLineString = errors.New("no LineString found")

func readPathFile(path string) (trajectory.Trajectory, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parsePath(data)
}

// parsePath accepts a GeoJSON FeatureCollection, Feature or bare geometry and
// returns the first LineString in it
func parsePath(data []byte) (trajectory.Trajectory, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid geojson: %w", err)
	}

	var geometries []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("invalid feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geometries = append(geometries, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("invalid feature: %w", err)
		}
		geometries = append(geometries, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("invalid geometry: %w", err)
		}
		geometries = append(geometries, g.Geometry())
	}

	for _, g := range geometries {
		if ls, ok := g.(orb.LineString); ok {
			points := make(trajectory.Trajectory, len(ls))
			for i, p := range ls {
				points[i] = geo.FromOrb(p)
			}
			return points, nil
		}
	}
	return nil, errNoLineString
}
