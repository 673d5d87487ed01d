// Command globe renders the Meridian globe in a terminal, serves it to
// remote viewers and manages the location catalog.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meridianmaritime/globe/internal/config"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "globe"
)

var configDir string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   AppName,
		Short: "Interactive 3D globe of Meridian offices and ports",
		Long: `globe draws the office network on a rotating earth.

Run "globe view" for the terminal viewer, "globe serve" to stream a headless
globe over WebSocket, or "globe catalog" to manage locations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(configDir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s; using defaults\n", err)
			}
			return bindOverrides(cmd)
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing "+config.FileName)
	root.PersistentFlags().String("log-level", "", "override logLevel (debug, info, warn, error)")
	root.PersistentFlags().String("variant", "", "override the globe preset (hero, network, contact)")

	root.AddCommand(
		newViewCmd(),
		newServeCmd(),
		newSnapshotCmd(),
		newCatalogCmd(),
		newVersionCmd(),
	)
	return root
}

// bindOverrides applies persistent flags on top of the config file.
func bindOverrides(cmd *cobra.Command) error {
	for key, flag := range map[string]string{"logLevel": "log-level", "variant": "variant"} {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		viper.Set(key, f.Value.String())
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
			return err
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
