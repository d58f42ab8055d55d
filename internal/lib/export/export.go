// Package export renders computed trajectories as map layers: GeoJSON for web
// maps, KML for desktop viewers and encoded polylines for compact transport.
package export

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-kml"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
	"github.com/drawpath/drawpath/server/internal/lib/trajectory"
)

// Layer names, shared by every output format
const (
	LayerRaw        = "raw"
	LayerSector     = "admissible_sector"
	LayerTrajectory = "trajectory"
	LayerLeftLimit  = "left_limit"
	LayerRightLimit = "right_limit"
	LayerViolation  = "curvature_violation"
)

// Scene is everything drawn for one computation. Result is nil when the
// path was rejected; the raw drawing and the sector are still rendered.
type Scene struct {
	Raw    trajectory.Trajectory
	Pose   trajectory.Pose
	Sector *geo.Sector
	Result *trajectory.Result
}

type layer struct {
	name   string
	points trajectory.Trajectory
}

// lines returns the non-empty polyline layers in drawing order
func (s Scene) lines() []layer {
	all := []layer{{LayerRaw, s.Raw}}
	if s.Result != nil {
		all = append(all,
			layer{LayerTrajectory, s.Result.Trajectory},
			layer{LayerLeftLimit, s.Result.Limits.Left},
			layer{LayerRightLimit, s.Result.Limits.Right},
		)
	}

	out := make([]layer, 0, len(all))
	for _, l := range all {
		if len(l.points) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// FeatureCollection builds one feature per layer. Every feature carries a
// "layer" property; violations become point features.
func FeatureCollection(s Scene) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	vehicle := geojson.NewFeature(s.Pose.Position.Orb())
	vehicle.Properties["layer"] = "vehicle"
	vehicle.Properties["heading"] = s.Pose.Heading
	fc.Append(vehicle)

	if s.Sector != nil && len(s.Sector.Polygon) > 0 {
		f := geojson.NewFeature(s.Sector.Polygon)
		f.Properties["layer"] = LayerSector
		f.Properties["radius_m"] = s.Sector.Radius
		fc.Append(f)
	}

	for _, l := range s.lines() {
		f := geojson.NewFeature(geo.LineString(l.points))
		f.Properties["layer"] = l.name
		f.Properties["points"] = len(l.points)
		fc.Append(f)
	}

	if s.Result != nil {
		for _, v := range s.Result.Violations {
			f := geojson.NewFeature(v.Point.Orb())
			f.Properties["layer"] = LayerViolation
			f.Properties["index"] = v.Index
			f.Properties["angle_deg"] = v.Angle
			f.Properties["ratio_deg_per_m"] = v.Ratio
			fc.Append(f)
		}
	}

	return fc
}

// WriteGeoJSON writes the scene as an indented GeoJSON FeatureCollection
func WriteGeoJSON(w io.Writer, s Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FeatureCollection(s)); err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	return nil
}

var layerColors = map[string]color.RGBA{
	LayerRaw:        {R: 128, G: 128, B: 128, A: 255},
	LayerSector:     {R: 0, G: 128, B: 255, A: 160},
	LayerTrajectory: {R: 255, G: 0, B: 0, A: 255},
	LayerLeftLimit:  {R: 0, G: 160, B: 0, A: 255},
	LayerRightLimit: {R: 0, G: 160, B: 0, A: 255},
}

func coordinates(points []geo.Point) kml.Element {
	coords := make([]kml.Coordinate, len(points))
	for i, p := range points {
		coords[i] = kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
	}
	return kml.Coordinates(coords...)
}

func ringCoordinates(ring orb.Ring) kml.Element {
	coords := make([]kml.Coordinate, len(ring))
	for i, p := range ring {
		coords[i] = kml.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
	}
	return kml.Coordinates(coords...)
}

// KML builds a KML document with one styled placemark per layer
func KML(s Scene, name string) *kml.CompoundElement {
	styles := make(map[string]*kml.SharedElement, len(layerColors))
	doc := kml.Document(kml.Name(name))
	for _, id := range []string{LayerRaw, LayerSector, LayerTrajectory, LayerLeftLimit, LayerRightLimit} {
		style := kml.SharedStyle(id, kml.LineStyle(kml.Color(layerColors[id]), kml.Width(2)))
		styles[id] = style
		doc.Add(style)
	}

	doc.Add(kml.Placemark(
		kml.Name("vehicle"),
		kml.Point(kml.Coordinates(kml.Coordinate{Lon: s.Pose.Position.Longitude, Lat: s.Pose.Position.Latitude})),
	))

	if s.Sector != nil && len(s.Sector.Polygon) > 0 {
		doc.Add(kml.Placemark(
			kml.Name(LayerSector),
			kml.StyleURL(styles[LayerSector].URL()),
			kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(ringCoordinates(s.Sector.Polygon[0])))),
		))
	}

	for _, l := range s.lines() {
		doc.Add(kml.Placemark(
			kml.Name(l.name),
			kml.StyleURL(styles[l.name].URL()),
			kml.LineString(coordinates(l.points)),
		))
	}

	if s.Result != nil {
		for _, v := range s.Result.Violations {
			doc.Add(kml.Placemark(
				kml.Name(fmt.Sprintf("%s %d", LayerViolation, v.Index)),
				kml.Description(fmt.Sprintf("%.1f° over %.2fm (%.1f°/m)", v.Angle, v.Distance, v.Ratio)),
				kml.Point(coordinates([]geo.Point{v.Point})),
			))
		}
	}

	return kml.KML(doc)
}

// WriteKML writes the scene as an indented KML document
func WriteKML(w io.Writer, s Scene, name string) error {
	if err := KML(s, name).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write kml: %w", err)
	}
	return nil
}

// Polylines holds the Google encoded form of each result line
type Polylines struct {
	Trajectory string `json:"trajectory"`
	LeftLimit  string `json:"left_limit"`
	RightLimit string `json:"right_limit"`
}

// EncodePolylines encodes the result lines; a nil result yields empty strings
func EncodePolylines(g geo.GeoUtils, r *trajectory.Result) Polylines {
	if r == nil {
		return Polylines{}
	}
	return Polylines{
		Trajectory: g.EncodePolyline(r.Trajectory),
		LeftLimit:  g.EncodePolyline(r.Limits.Left),
		RightLimit: g.EncodePolyline(r.Limits.Right),
	}
}
