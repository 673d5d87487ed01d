package globe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/meridianmaritime/globe/internal/globe"

type instruments struct {
	frames     metric.Int64Counter
	toggles    metric.Int64Counter
	zoom       metric.Int64Counter
	visibility metric.Float64Gauge
}

func newInstruments() (*instruments, error) {
	m := otel.Meter(instrumentationName)
	var (
		in  instruments
		err error
	)

	in.frames, err = m.Int64Counter(
		"globe.frames",
		metric.WithDescription("Frames rendered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}

	in.toggles, err = m.Int64Counter(
		"globe.gate.toggles",
		metric.WithDescription("Zoom gate transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gate counter: %w", err)
	}

	in.zoom, err = m.Int64Counter(
		"globe.zoom.steps",
		metric.WithDescription("Wheel steps by gate outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating zoom counter: %w", err)
	}

	in.visibility, err = m.Float64Gauge(
		"globe.visibility",
		metric.WithDescription("Current visibility factor"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating visibility gauge: %w", err)
	}

	return &in, nil
}

func (in *instruments) recordFrame(variant Variant, fade Fade) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("variant", string(variant)))
	in.frames.Add(ctx, 1, attrs)
	in.visibility.Record(ctx, fade.Factor, attrs)
}

func (in *instruments) recordToggle(hover bool) {
	in.toggles.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool("hover", hover)))
}

func (in *instruments) recordZoom(accepted bool) {
	in.zoom.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool("accepted", accepted)))
}
