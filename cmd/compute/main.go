package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dpup/prefab/logging"
	"go.uber.org/zap"

	"github.com/drawpath/drawpath/server/internal/config"
	"github.com/drawpath/drawpath/server/internal/lib/export"
	"github.com/drawpath/drawpath/server/internal/lib/geo"
	"github.com/drawpath/drawpath/server/internal/lib/trajectory"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	geoUtils := geo.NewGeoUtils()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	switch command {
	case "trajectory":
		os.Exit(handleTrajectory(sugar, geoUtils))
	case "sector":
		handleSector(sugar)
	case "decode-polyline":
		handleDecodePolyline(geoUtils)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// poseFlags are shared by every command that needs a vehicle
type poseFlags struct {
	configPath *string
	lng        *float64
	lat        *float64
	heading    *float64
}

func registerPoseFlags(fs *flag.FlagSet) *poseFlags {
	return &poseFlags{
		configPath: fs.String("config", "", "YAML config file (env DRAWPATH__* overrides)"),
		lng:        fs.Float64("lng", 0, "Vehicle longitude (default from config)"),
		lat:        fs.Float64("lat", 0, "Vehicle latitude (default from config)"),
		heading:    fs.Float64("heading", 0, "Vehicle heading in degrees (default from config)"),
	}
}

// resolve loads the config and applies the vehicle flags that were set
func (p *poseFlags) resolve(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(*p.configPath)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lng":
			cfg.Vehicle.Longitude = *p.lng
		case "lat":
			cfg.Vehicle.Latitude = *p.lat
		case "heading":
			cfg.Vehicle.Heading = *p.heading
		}
	})
	return cfg, cfg.Validate()
}

func handleTrajectory(sugar *zap.SugaredLogger, geoUtils geo.GeoUtils) int {
	fs := flag.NewFlagSet("trajectory", flag.ExitOnError)
	pose := registerPoseFlags(fs)
	in := fs.String("in", "", "GeoJSON file with the drawn LineString, - for stdin")
	encoded := fs.String("polyline", "", "Drawn path as a Google encoded polyline")
	format := fs.String("format", "geojson", "Output format: geojson or kml")
	out := fs.String("out", "-", "Output file, - for stdout")
	strict := fs.Bool("strict", false, "Reject trajectories that violate the turning radius")

	fs.Parse(os.Args[2:])

	if (*in == "") == (*encoded == "") {
		fmt.Println("Example usage:")
		fmt.Println("  compute trajectory --in drawn.geojson --format kml --out trajectory.kml")
		fmt.Println("  compute trajectory --polyline '_p~iF~ps|U_ulLnnqC' --heading 255")
		return 1
	}

	cfg, err := pose.resolve(fs)
	if err != nil {
		sugar.Errorw("Invalid configuration", "error", err)
		return 1
	}
	tcfg := cfg.Trajectory.ToTrajectory()
	if *strict {
		tcfg.StrictCurvature = true
	}
	vehicle := cfg.Vehicle.ToPose()

	var raw trajectory.Trajectory
	if *encoded != "" {
		raw, err = geoUtils.DecodePolyline(*encoded)
	} else {
		raw, err = readPathFile(*in)
	}
	if err != nil {
		sugar.Errorw("Failed to read drawn path", "error", err)
		return 1
	}

	sugar.Infow("Computing trajectory",
		"points", len(raw), "vehicle", vehicle.Position, "heading", vehicle.Heading,
		"max_point_distance", tcfg.MaxPointDistance)

	scene, exitCode := computeScene(cliContext(), sugar, raw, vehicle, tcfg)
	if exitCode == 1 {
		return exitCode
	}

	if err := writeScene(*out, *format, scene); err != nil {
		sugar.Errorw("Failed to write output", "error", err)
		return 1
	}
	return exitCode
}

// cliContext carries the logger the trajectory library writes to
func cliContext() context.Context {
	return logging.EnsureLogger(context.Background())
}

// computeScene runs the pipeline and returns what should be exported with the
// trajectory exit code. A rejected path still exports its sector.
func computeScene(ctx context.Context, sugar *zap.SugaredLogger, raw trajectory.Trajectory,
	vehicle trajectory.Pose, tcfg trajectory.Config) (export.Scene, int) {
	sector := trajectory.AdmissibleSector(vehicle, tcfg)
	scene := export.Scene{Raw: raw, Pose: vehicle, Sector: &sector}

	result, err := trajectory.Compute(ctx, raw, vehicle, tcfg)
	switch {
	case err != nil && trajectory.IsRejection(err):
		sugar.Warnw("Drawn path rejected", "reason", trajectory.Reason(err), "error", err)
		return scene, 2
	case err != nil:
		sugar.Errorw("Computation failed", "error", err)
		return scene, 1
	}

	scene.Result = result
	sugar.Infow("Trajectory computed",
		"points", len(result.Trajectory),
		"left_limit", len(result.Limits.Left),
		"right_limit", len(result.Limits.Right),
		"violations", len(result.Violations))
	for _, v := range result.Violations {
		sugar.Warnw("Curvature violation", "index", v.Index, "angle", v.Angle, "ratio", v.Ratio)
	}
	return scene, 0
}

func handleSector(sugar *zap.SugaredLogger) {
	fs := flag.NewFlagSet("sector", flag.ExitOnError)
	pose := registerPoseFlags(fs)
	format := fs.String("format", "geojson", "Output format: geojson or kml")
	out := fs.String("out", "-", "Output file, - for stdout")

	fs.Parse(os.Args[2:])

	cfg, err := pose.resolve(fs)
	if err != nil {
		sugar.Fatalw("Invalid configuration", "error", err)
	}

	vehicle := cfg.Vehicle.ToPose()
	sector := trajectory.AdmissibleSector(vehicle, cfg.Trajectory.ToTrajectory())
	if err := writeScene(*out, *format, export.Scene{Pose: vehicle, Sector: &sector}); err != nil {
		sugar.Fatalw("Failed to write output", "error", err)
	}
}

func handleDecodePolyline(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("decode-polyline", flag.ExitOnError)
	polyline := fs.String("polyline", "", "Encoded polyline string")

	fs.Parse(os.Args[2:])

	if *polyline == "" {
		fmt.Println("Example usage:")
		fmt.Println("  compute decode-polyline --polyline '_p~iF~ps|U_ulLnnqC_mqNvxq`@'")
		os.Exit(1)
	}

	points, err := geoUtils.DecodePolyline(*polyline)
	if err != nil {
		log.Fatalf("Error decoding polyline: %v", err)
	}

	fmt.Printf("Decoded %d points:\n", len(points))
	for i, p := range points {
		fmt.Printf("  %d: %.6f, %.6f\n", i, p.Longitude, p.Latitude)
	}
}

func writeScene(path, format string, scene export.Scene) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return encodeScene(w, format, scene)
}

func encodeScene(w io.Writer, format string, scene export.Scene) error {
	switch strings.ToLower(format) {
	case "geojson", "json":
		return export.WriteGeoJSON(w, scene)
	case "kml":
		return export.WriteKML(w, scene, "drawpath")
	}
	return fmt.Errorf("unknown format %q", format)
}

func printUsage() {
	fmt.Println("compute - drawn path to vehicle trajectory")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  compute <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  trajectory        Compute a trajectory and its footprint limits")
	fmt.Println("  sector            Export the admissible starting sector of the vehicle")
	fmt.Println("  decode-polyline   Decode a Google encoded polyline into lng/lat points")
	fmt.Println("  help              Show this help message")
	fmt.Println()
	fmt.Println("Exit codes of trajectory: 0 computed, 1 error, 2 path rejected")
}
