// Command tracksim simulates a moving device for the discovery pipeline.
//
// By default it publishes a scripted walk to the position stream that the
// discovery worker consumes. With -local it runs a tracker and camera
// controller in-process instead, useful for trying the engine without Redis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/discovery-engine/internal/camera"
	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/pkg/geo"
	"github.com/discovery-engine/internal/pkg/logger"
	"github.com/discovery-engine/internal/tracker"
	"github.com/discovery-engine/internal/usecase"
)

func ptr[T any](v T) *T {
	return &v
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	deviceID := flag.String("device", "sim-device-1", "device ID for published events")
	lat := flag.Float64("lat", 51.5074, "starting latitude")
	lon := flag.Float64("lon", -0.1278, "starting longitude")
	heading := flag.Float64("heading", 45, "walk heading in degrees")
	speedKmh := flag.Float64("speed", 4.5, "walk speed in km/h")
	steps := flag.Int("steps", 20, "number of readings to emit")
	interval := flag.Duration("interval", 2*time.Second, "delay between readings")
	local := flag.Bool("local", false, "run the tracker in-process instead of publishing")
	flag.Parse()

	if *local {
		runLocal(*lat, *lon, *heading, *speedKmh, *steps, *interval)
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	speedMps := *speedKmh / 3.6
	stepKm := speedMps * interval.Seconds() / 1000.0
	pos := domain.Point{Lat: *lat, Lon: *lon}

	for i := 0; i < *steps; i++ {
		event := domain.PositionEvent{
			DeviceID:   *deviceID,
			Lat:        pos.Lat,
			Lon:        pos.Lon,
			AccuracyM:  8,
			Timestamp:  time.Now().UTC(),
			SpeedMps:   ptr(speedMps),
			HeadingDeg: ptr(*heading),
		}

		data, err := json.Marshal(event)
		if err != nil {
			log.Fatalf("Failed to marshal event: %v", err)
		}

		id, err := client.XAdd(ctx, &redis.XAddArgs{
			Stream: domain.StreamPositions,
			Values: map[string]interface{}{
				"data": string(data),
			},
		}).Result()
		if err != nil {
			log.Fatalf("Failed to publish event: %v", err)
		}

		fmt.Printf("published %s step=%d lat=%.6f lon=%.6f\n", id, i+1, pos.Lat, pos.Lon)

		pos = geo.Destination(pos, *heading, stepKm)
		time.Sleep(*interval)
	}
}

// runLocal drives a tracker and camera controller against a small fixed
// entity set, printing discoveries and camera state as the walk progresses.
func runLocal(lat, lon, heading, speedKmh float64, steps int, interval time.Duration) {
	zl, err := logger.New("debug")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	origin := domain.Point{Lat: lat, Lon: lon}
	entities := demoEntities(origin, heading)

	cam := camera.NewController(domain.CameraState{Center: origin, Zoom: 12}, zl)
	ranker := usecase.NewRankUseCase(zl)

	notifier := &printNotifier{cam: cam, ranker: ranker}
	source := tracker.NewPushSource()
	tr := tracker.New(tracker.Config{}, source, notifier, zl)
	tr.SetEntities(entities)

	if err := tr.Start(); err != nil {
		log.Fatalf("Failed to start tracker: %v", err)
	}
	defer tr.Stop()

	speedMps := speedKmh / 3.6
	stepKm := speedMps * interval.Seconds() / 1000.0
	pos := origin
	now := time.Now()

	for i := 0; i < steps; i++ {
		source.Push(domain.TrackedPosition{
			Lat:        pos.Lat,
			Lon:        pos.Lon,
			AccuracyM:  8,
			Timestamp:  now,
			SpeedMps:   ptr(speedMps),
			HeadingDeg: ptr(heading),
		})

		state := cam.Advance(now)
		fmt.Printf("step=%d pos=(%.6f, %.6f) camera=(%.6f, %.6f, z%.1f) nearby=%d\n",
			i+1, pos.Lat, pos.Lon,
			state.Center.Lat, state.Center.Lon, state.Zoom,
			len(tr.Nearby()))

		pos = geo.Destination(pos, heading, stepKm)
		now = now.Add(interval)
	}

	stats := tr.Stats()
	fmt.Printf("done readings=%d distance=%.3fkm\n", stats.Readings, stats.TotalDistanceKm)
}

// printNotifier flies the camera to each discovery and prints it.
type printNotifier struct {
	cam    *camera.Controller
	ranker *usecase.RankUseCase
}

func (n *printNotifier) EntityDiscovered(entity domain.Entity, distanceKm float64) {
	fmt.Printf("discovered %q at %.3fkm (eta %.1f min)\n",
		entity.Name, distanceKm, n.ranker.EstimateArrivalMinutes(distanceKm, nil))

	n.cam.TransitionTo(
		domain.CameraState{Center: entity.Point(), Zoom: 15},
		800*time.Millisecond,
		time.Now(),
		nil,
	)
}

// demoEntities places a few entities along and around the walk heading so a
// default run produces discoveries.
func demoEntities(origin domain.Point, heading float64) []domain.Entity {
	ahead := geo.Destination(origin, heading, 0.5)
	farther := geo.Destination(origin, heading, 1.5)
	aside := geo.Destination(origin, heading+90, 3.0)

	return []domain.Entity{
		{ID: "sim-1", Name: "Corner Market", Lat: ahead.Lat, Lon: ahead.Lon},
		{ID: "sim-2", Name: "Old Mill", Lat: farther.Lat, Lon: farther.Lon},
		{ID: "sim-3", Name: "Distant Orchard", Lat: aside.Lat, Lon: aside.Lon},
	}
}
