package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridianmaritime/globe/internal/storage"
	"github.com/meridianmaritime/globe/pkg/core"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the location catalog",
		Long: `Lists and edits the offices and ports drawn on the globe. The backend is
chosen by catalog.type (memory, sqlite or postgres); the memory backend
only lives for one command.`,
	}
	cmd.AddCommand(
		newCatalogListCmd(),
		newCatalogAddCmd(),
		newCatalogRemoveCmd(),
		newCatalogSeedCmd(),
		newCatalogAnchorCmd(),
	)
	return cmd
}

// withCatalog opens the configured backend for the duration of fn.
func withCatalog(ctx context.Context, fn func(storage.Backend) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List locations in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withCatalog(ctx, func(b storage.Backend) error {
				locs, err := b.Locations(ctx)
				if err != nil {
					return err
				}
				anchor, err := b.Anchor(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, l := range locs {
					mark := " "
					if l.Name == anchor.Name {
						mark = "*"
					}
					fmt.Fprintf(out, "%s %-16s %-24s %9.4f %10.4f %s\n",
						mark, l.Name, l.Country, l.Latitude, l.Longitude, strings.Join(l.Tags, ","))
				}
				return nil
			})
		},
	}
}

func newCatalogAddCmd() *cobra.Command {
	var (
		country string
		tags    []string
	)
	cmd := &cobra.Command{
		Use:   "add <name> <lat> <lon>",
		Short: "Add a location",
		Long: `Adds a location at the end of the catalog. Put "--" before the
arguments when a coordinate is negative.`,
		Example: `  globe catalog add --country Kenya --tag port -- Mombasa -4.0435 39.6682`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("latitude %q: %w", args[1], err)
			}
			lon, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("longitude %q: %w", args[2], err)
			}
			loc := core.Location{
				Name:      args[0],
				Country:   country,
				Latitude:  lat,
				Longitude: lon,
				Tags:      tags,
			}
			ctx := cmd.Context()
			return withCatalog(ctx, func(b storage.Backend) error {
				if err := b.AddLocation(ctx, &loc); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "added %s (id %d)\n", loc.Name, loc.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "country name")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag, repeatable")
	return cmd
}

func newCatalogRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withCatalog(ctx, func(b storage.Backend) error {
				if err := b.RemoveLocation(ctx, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return err
			})
		},
	}
}

func newCatalogSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the built-in offices that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withCatalog(ctx, func(b storage.Backend) error {
				n, err := storage.Seed(ctx, b, core.DefaultLocations)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d locations\n", n)
				return err
			})
		},
	}
}

func newCatalogAnchorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "anchor [name]",
		Short: "Show or set the brand anchor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withCatalog(ctx, func(b storage.Backend) error {
				if len(args) == 1 {
					if err := b.SetAnchor(ctx, args[0]); err != nil {
						return err
					}
				}
				anchor, err := b.Anchor(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "anchor %s (%.4f, %.4f)\n", anchor.Name, anchor.Latitude, anchor.Longitude)
				return err
			})
		},
	}
}
