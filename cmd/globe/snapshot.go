package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridianmaritime/globe/internal/config"
	"github.com/meridianmaritime/globe/internal/globe"
	"github.com/meridianmaritime/globe/internal/host"
	"github.com/meridianmaritime/globe/internal/render"
)

// errNoFrame is returned when the globe never drew.
var errNoFrame = errors.New("no frame was drawn")

// snapshotEpoch fixes the host clock so snapshots are reproducible.
var snapshotEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newSnapshotCmd() *cobra.Command {
	var (
		out           string
		width, height int
		after         time.Duration
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one frame to a PNG file",
		Long: `Mounts the globe on a headless surface, advances a simulated clock and
writes the last frame. Use --after to capture the end of the entry
transition or a later point of the idle spin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runSnapshot(cmd.Context(), out, width, height, after); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "globe.png", "output PNG path")
	cmd.Flags().IntVar(&width, "width", 320, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 180, "image height in pixels")
	cmd.Flags().DurationVar(&after, "after", 3*time.Second, "simulated time before capture")
	return cmd
}

func runSnapshot(ctx context.Context, out string, width, height int, after time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.globeOptions(ctx)
	if err != nil {
		return err
	}

	clock := host.NewManual(snapshotEpoch)
	surface := render.NewHeadless(width, height, a.logger)
	_, dispose, err := globe.Initialize(clock, surface, opts, globe.Dependencies{
		Logger:   a.logger,
		Textures: render.TextureLoader(a.logger),
		Variant:  globe.Variant(config.GetString("variant")),
	})
	if err != nil {
		return err
	}
	defer dispose()

	period := config.GetDuration("framePeriod")
	if period <= 0 {
		period = host.DefaultFramePeriod
	}
	for elapsed := time.Duration(0); elapsed <= after; elapsed += period {
		if clock.Step(period) == 0 {
			break
		}
	}
	if surface.Frames() == 0 {
		return errNoFrame
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := surface.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
