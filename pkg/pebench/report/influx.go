package report

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/coinbase/pebench-go/pkg/pebench/bench"
)

// InfluxMeasurement is the measurement name of every point Influx writes.
const InfluxMeasurement = "pebench_operation"

// PointWriter is the part of the InfluxDB blocking write API Influx needs.
// api.WriteAPIBlocking satisfies it.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Influx writes one point per measurement, tagged with the run ID, scheme,
// operation and (when present) label.
type Influx struct {
	w PointWriter
}

// NewInflux returns a reporter writing through w.
func NewInflux(w PointWriter) *Influx {
	return &Influx{w: w}
}

// Report writes every measurement in a single call. Point timestamps are the
// run start offset by the measurement's position, so points of one run never
// collide.
func (x *Influx) Report(ctx context.Context, res *bench.Result) error {
	points := make([]*write.Point, 0, len(res.Measurements))
	for i, m := range res.Measurements {
		tags := map[string]string{
			"run_id":    res.RunID.String(),
			"scheme":    res.Scheme,
			"operation": string(m.Operation),
		}
		if m.Label != "" {
			tags["label"] = m.Label
		}
		fields := map[string]interface{}{
			"duration_ns": m.Duration.Nanoseconds(),
			"setup":       m.Setup,
			"keygen":      m.KeyGeneration,
			"cycle":       m.Cycle,
			"satisfied":   m.Satisfied,
		}
		// Points with equal tags and timestamp overwrite each other, so each
		// measurement is offset from the run start by its position.
		points = append(points, influxdb2.NewPoint(InfluxMeasurement, tags, fields, res.Started.Add(time.Duration(i))))
	}
	if len(points) == 0 {
		return nil
	}
	if err := x.w.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write %d points: %w", len(points), err)
	}
	return nil
}
