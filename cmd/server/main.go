package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/dpup/prefab"
	"github.com/dpup/prefab/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drawpath/drawpath/server/internal/cache"
	"github.com/drawpath/drawpath/server/internal/config"
	"github.com/drawpath/drawpath/server/internal/services"
)

func main() {
	// Load configuration using Prefab's config system
	appConfig := loadConfig()

	// Background work runs outside any request, so it needs its own logger
	ctx, cancel := context.WithCancel(logging.EnsureLogger(context.Background()))
	defer cancel()

	// Latest result per vehicle, expired entries swept in the background
	store := cache.NewCache(appConfig.Store.ResultTTL)
	store.StartPeriodicCleanup(ctx, appConfig.Store.CleanupInterval)
	if err := services.RegisterStoreMetrics(prometheus.DefaultRegisterer, store); err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	trajectoryService := services.NewTrajectoryService(store, appConfig)
	api, err := trajectoryService.Handler()
	if err != nil {
		log.Fatalf("Failed to build API routes: %v", err)
	}

	log.Printf("Trajectory API Server starting")
	log.Printf("Resampling distance: %.2fm, vehicle circle: %.1fm, max starting angle: %.0f°",
		appConfig.Trajectory.MaxPointDistance,
		appConfig.Trajectory.VehicleCircleRadius,
		appConfig.Trajectory.MaxStartingAngle)
	if appConfig.Trajectory.StrictCurvature {
		log.Printf("Strict curvature enabled, turning radius %.3fm", appConfig.Trajectory.TurningRadius)
	}

	// Server configuration (port, etc.) will be loaded from prefab.yaml/env vars
	server := prefab.New(
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
		prefab.WithHTTPHandler(services.APIPrefix, api),
		prefab.WithHTTPHandlerFunc("/metrics", promhttp.Handler().ServeHTTP),
	)

	// Start the server (blocks until shutdown)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig loads configuration using Prefab's config system
// Configuration is loaded from prefab.yaml and environment variables with PF__ prefix
func loadConfig() *config.Config {
	appConfig := config.DefaultConfig()

	// Unmarshal specific sections over the defaults using exact key paths
	if err := prefab.Config.Unmarshal("trajectory", &appConfig.Trajectory); err != nil {
		log.Fatalf("Failed to unmarshal trajectory section: %v", err)
	}

	if err := prefab.Config.Unmarshal("store", &appConfig.Store); err != nil {
		log.Fatalf("Failed to unmarshal store section: %v", err)
	}

	if err := prefab.Config.Unmarshal("vehicle", &appConfig.Vehicle); err != nil {
		log.Fatalf("Failed to unmarshal vehicle section: %v", err)
	}

	if err := appConfig.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return appConfig
}

// homepageHandler serves a simple HTML homepage at the server root
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	// Only handle the root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>drawpath</title>
    <style>
        body {
            font-family: 'Courier New', Consolas, monospace;
            background: #000;
            color: #0f0;
            padding: 20px;
            line-height: 1.4;
        }
        a { color: #0ff; text-decoration: none; }
        a:hover { text-decoration: underline; }
        pre { margin: 0; }
        .header { color: #ff0; }
    </style>
</head>
<body>
<pre>
<span class="header">drawpath</span>

Turns paths drawn on a map into drivable vehicle trajectories.

<span class="header">API Endpoints:</span>

  POST /api/v1/trajectories                 - Compute a trajectory from a drawn path
  GET  /api/v1/trajectories/{vehicle_id}    - Latest trajectory computed for a vehicle
  <a href="/metrics">GET  /metrics</a>                             - Prometheus metrics

<span class="header">Request Body:</span>

  {
    "vehicle": {"id": "truck-1", "lng": 7.1474, "lat": 46.7968, "heading": 255},
    "path": [[7.1474, 46.7968], [7.14716, 46.79675], ...],
    "config": {"turning_radius": 5, "strict_curvature": true}
  }

  "encoded_path" accepts a Google encoded polyline instead of "path".

<span class="header">Example Usage:</span>
  curl -X POST -d @path.json http://localhost:8000/api/v1/trajectories
</pre>
</body>
</html>`

	if _, err := fmt.Fprint(w, html); err != nil {
		slog.Error("Failed to write homepage HTML", "error", err)
	}
}
