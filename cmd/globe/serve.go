package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meridianmaritime/globe/internal/config"
	"github.com/meridianmaritime/globe/internal/globe"
	"github.com/meridianmaritime/globe/internal/host"
	"github.com/meridianmaritime/globe/internal/logging"
	"github.com/meridianmaritime/globe/internal/monitor"
	"github.com/meridianmaritime/globe/internal/render"
)

func newServeCmd() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a headless globe and stream it over WebSocket",
		Long: `Runs the globe without a terminal. Clients connect to ws://<stream.addr>/globe,
receive frame statistics and drive the globe by sending pointer, wheel and
resize messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), width, height)
		},
	}
	cmd.Flags().IntVar(&width, "width", 160, "initial surface width in pixels")
	cmd.Flags().IntVar(&height, "height", 90, "initial surface height in pixels")
	return cmd
}

// resizingPoster keeps the headless surface in step with client resizes
// before the event reaches the loop.
type resizingPoster struct {
	surface *render.Headless
	next    *host.Loop
}

func (p resizingPoster) Post(ev host.Event) {
	if ev.Kind == host.EventResize {
		w, h, ok := p.surface.Resize(ev.Width, ev.Height)
		if !ok {
			return
		}
		ev.Width, ev.Height = w, h
	}
	p.next.Post(ev)
}

func runServe(parent context.Context, width, height int) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx = logging.AppendCtx(ctx, slog.String("command", "serve"))

	variant := globe.Variant(config.GetString("variant"))
	opts, err := a.globeOptions(ctx)
	if err != nil {
		return err
	}

	loop, err := host.NewLoop(config.GetDuration("framePeriod"), a.hostLogger())
	if err != nil {
		return err
	}
	surface := render.NewHeadless(width, height, a.logger)

	hub, srv, err := startStream(a, resizingPoster{surface: surface, next: loop}, variant, surface.Size)
	if err != nil {
		return err
	}
	defer hub.Close()

	observers := append(a.observers(ctx, variant), hub)
	observers = append(observers, a.startMonitor(map[string]monitor.Counter{
		"droppedEvents": loop.DroppedEvents,
		"framesDrawn":   surface.Frames,
		"streamDropped": hub.Dropped,
		"streamClients": func() uint64 { return uint64(hub.Clients()) },
	})...)

	_, dispose, err := globe.Initialize(loop, surface, opts, globe.Dependencies{
		Logger:    a.logger,
		Textures:  render.TextureLoader(a.logger),
		Observers: observers,
		Variant:   variant,
	})
	if err != nil {
		return err
	}
	defer dispose()

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Serve(ctx) }()

	if err := loop.Run(ctx); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "Headless globe stopped", "frames", surface.Frames(), "clients", hub.Clients(), "dropped", hub.Dropped())
	return <-srvErr
}
