package influx

import (
	"context"
	"sync/atomic"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/meridianmaritime/globe/internal/globe"
)

// Measurements written by Recorder.
const (
	MeasurementInteraction = "globe_interaction"
	MeasurementSession     = "globe_session"
)

// PointWriter is satisfied by *Manager.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Recorder is a globe.FrameObserver that samples frames into InfluxDB.
// Every SampleEvery-th frame is written, plus every frame where the zoom
// gate changes.
type Recorder struct {
	w           PointWriter
	bucket      string
	variant     globe.Variant
	sampleEvery uint64
	logger      zerolog.Logger

	lastHover atomic.Bool
	written   atomic.Uint64
	failed    atomic.Uint64
}

// NewRecorder returns a recorder writing to bucket. sampleEvery below 1
// records every frame.
func NewRecorder(w PointWriter, bucket string, variant globe.Variant, sampleEvery uint64, logger zerolog.Logger) *Recorder {
	return &Recorder{
		w:           w,
		bucket:      bucket,
		variant:     variant,
		sampleEvery: max(sampleEvery, 1),
		logger:      logger,
	}
}

// ObserveFrame implements globe.FrameObserver.
func (r *Recorder) ObserveFrame(s globe.FrameStats) {
	toggled := r.lastHover.Swap(s.Hover) != s.Hover
	if !toggled && s.Frame%r.sampleEvery != 0 {
		return
	}

	p := influxdb2_write.NewPointWithMeasurement(MeasurementInteraction).
		AddTag("variant", string(r.variant)).
		AddTag("state", s.State.String()).
		AddField("frame", s.Frame).
		AddField("distance", s.Distance).
		AddField("visibility", s.Fade.Factor).
		AddField("cloud_opacity", s.Fade.CloudOpacity).
		AddField("brand_scale", s.Fade.BrandScale).
		AddField("hover", s.Hover).
		AddField("group_scale", s.GroupScale).
		SetTime(s.Time)
	r.write(p.SortTags())
}

// ObserveSession implements globe.FrameObserver.
func (r *Recorder) ObserveSession(s globe.SessionStats) {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementSession).
		AddTag("variant", string(s.Variant)).
		AddField("duration_ms", s.Duration().Milliseconds()).
		AddField("frames", s.Frames).
		AddField("hover_frames", s.HoverFrames).
		AddField("gate_toggles", s.GateToggles).
		AddField("zoom_accepted", s.ZoomAccepted).
		AddField("zoom_rejected", s.ZoomRejected).
		AddField("min_distance", s.MinDistance).
		SetTime(s.Ended)
	r.write(p.SortTags())
}

func (r *Recorder) write(p *influxdb2_write.Point) {
	if err := r.w.WritePoint(context.Background(), r.bucket, p); err != nil {
		// only the first failure is logged
		if r.failed.Add(1) == 1 {
			r.logger.Error().Err(err).Str("bucket", r.bucket).Msg("Error recording globe point")
		}
		return
	}
	r.written.Add(1)
}

// Written returns the number of points accepted by the writer.
func (r *Recorder) Written() uint64 { return r.written.Load() }

// Failed returns the number of points the writer rejected.
func (r *Recorder) Failed() uint64 { return r.failed.Load() }
