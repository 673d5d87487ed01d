package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/meridianmaritime/globe/internal/config"
	"github.com/meridianmaritime/globe/internal/globe"
	"github.com/meridianmaritime/globe/internal/host"
	"github.com/meridianmaritime/globe/internal/logging"
	"github.com/meridianmaritime/globe/internal/monitor"
	"github.com/meridianmaritime/globe/internal/render"
	"github.com/meridianmaritime/globe/internal/stream"
)

// newScreen is replaced in tests with a simulation screen.
var newScreen = tcell.NewScreen

func newViewCmd() *cobra.Command {
	var (
		withStream bool
		duration   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the globe in the terminal",
		Long: `Draws the globe with half-block cells. Drag with the mouse to orbit,
scroll over the globe to zoom and press q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), withStream, duration)
		},
	}
	cmd.Flags().BoolVar(&withStream, "stream", false, "also broadcast frames on stream.addr")
	cmd.Flags().DurationVar(&duration, "duration", 0, "exit after this long (0 runs until q)")
	return cmd
}

func runView(parent context.Context, withStream bool, duration time.Duration) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx = logging.AppendCtx(ctx, slog.String("command", "view"))

	variant := globe.Variant(config.GetString("variant"))
	opts, err := a.globeOptions(ctx)
	if err != nil {
		return err
	}

	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	loop, err := host.NewLoop(config.GetDuration("framePeriod"), a.hostLogger())
	if err != nil {
		return err
	}
	surface := render.NewTerminal(screen, a.logger)

	observers := a.observers(ctx, variant)
	observers = append(observers, a.startMonitor(map[string]monitor.Counter{
		"droppedEvents": loop.DroppedEvents,
		"framesDrawn":   surface.Frames,
	})...)
	var srvErr chan error
	if withStream {
		hub, srv, err := startStream(a, loop, variant, surface.Size)
		if err != nil {
			return err
		}
		defer hub.Close()
		observers = append(observers, hub)
		srvErr = make(chan error, 1)
		go func() { srvErr <- srv.Serve(ctx) }()
	}

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

	go render.Pump(screen, loop, cancel)

	if err := loop.Run(ctx); err != nil {
		return err
	}
	if srvErr != nil {
		if err := <-srvErr; err != nil {
			return err
		}
	}
	if n := loop.DroppedEvents(); n > 0 {
		a.logger.WarnContext(ctx, "Input events dropped", "count", n)
	}
	a.logger.InfoContext(ctx, "Viewer closed", "frames", surface.Frames())
	return nil
}

// startStream mounts a hub for the given surface size on stream.addr.
func startStream(a *app, p stream.Poster, variant globe.Variant, size func() (int, int)) (*stream.Hub, *stream.Server, error) {
	hub := stream.NewHub(stream.Config{
		Secret:      config.GetString("stream.secret"),
		Variant:     variant,
		SampleEvery: uint64(config.GetInt("stream.sampleEvery")),
		Size:        size,
	}, p, a.logger)
	srv, err := stream.Listen(config.GetString("stream.addr"), hub, a.logger)
	if err != nil {
		_ = hub.Close()
		return nil, nil, err
	}
	return hub, srv, nil
}
