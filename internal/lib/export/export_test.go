package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
	"github.com/drawpath/drawpath/server/internal/lib/trajectory"
)

var geoUtils = geo.NewGeoUtils()

func computedScene(t *testing.T) Scene {
	t.Helper()
	cfg := trajectory.DefaultConfig()
	pose := trajectory.Pose{Position: geo.NewPointUnsafe(7.1474, 46.7968), Heading: 255}

	var raw trajectory.Trajectory
	for d := 0.0; d <= 20; d += 2 {
		raw = append(raw, geoUtils.Destination(pose.Position, d, pose.Heading))
	}

	result, err := trajectory.Compute(context.Background(), raw, pose, cfg)
	require.NoError(t, err)

	sector := trajectory.AdmissibleSector(pose, cfg)
	return Scene{Raw: raw, Pose: pose, Sector: &sector, Result: result}
}

func layersOf(fc *geojson.FeatureCollection) map[string]*geojson.Feature {
	out := make(map[string]*geojson.Feature)
	for _, f := range fc.Features {
		out[f.Properties.MustString("layer")] = f
	}
	return out
}

func TestFeatureCollection_Layers(t *testing.T) {
	scene := computedScene(t)

	layers := layersOf(FeatureCollection(scene))

	for _, name := range []string{"vehicle", LayerSector, LayerRaw, LayerTrajectory, LayerLeftLimit, LayerRightLimit} {
		assert.Contains(t, layers, name)
	}

	line, ok := layers[LayerTrajectory].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, line, len(scene.Result.Trajectory))
	assert.Equal(t, scene.Pose.Position.Orb(), line[0])

	_, ok = layers[LayerSector].Geometry.(orb.Polygon)
	assert.True(t, ok)
}

func TestFeatureCollection_Rejected(t *testing.T) {
	raw := trajectory.Trajectory{geo.NewPointUnsafe(7.1474, 46.7968), geo.NewPointUnsafe(7.1475, 46.7968)}
	scene := Scene{Raw: raw, Pose: trajectory.Pose{Position: raw[0]}}

	layers := layersOf(FeatureCollection(scene))

	assert.Len(t, layers, 2)
	assert.Contains(t, layers, LayerRaw)
	assert.NotContains(t, layers, LayerTrajectory)
}

func TestWriteGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, computedScene(t)))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, fc.Features)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &generic))
	assert.Equal(t, "FeatureCollection", generic["type"])
}

func TestWriteKML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, computedScene(t), "drawn path"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<name>drawn path</name>")
	assert.Contains(t, out, "<LineString>")
	assert.Contains(t, out, "<Polygon>")
	assert.Contains(t, out, `<Style id="trajectory">`)
	assert.Equal(t, 4, strings.Count(out, "<LineString>"))
}

func TestEncodePolylines(t *testing.T) {
	scene := computedScene(t)

	lines := EncodePolylines(geoUtils, scene.Result)
	require.NotEmpty(t, lines.Trajectory)

	decoded, err := geoUtils.DecodePolyline(lines.Trajectory)
	require.NoError(t, err)
	require.Len(t, decoded, len(scene.Result.Trajectory))

	// 1e-5 degree precision
	for i, p := range decoded {
		assert.InDelta(t, scene.Result.Trajectory[i].Latitude, p.Latitude, 1e-5)
		assert.InDelta(t, scene.Result.Trajectory[i].Longitude, p.Longitude, 1e-5)
	}

	assert.Equal(t, Polylines{}, EncodePolylines(geoUtils, nil))
}
