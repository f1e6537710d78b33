package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fprochazka/hydraping/internal/runtime"
)

// SetupCmd creates the root command with all subcommands registered,
// mirroring the teacher's cmd/gtrace SetupCmd(version) shape.
func SetupCmd(version string) *cobra.Command {
	cmd := NewRootCmd(version)
	cmd.Version = version
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd(version))
	return cmd
}

// NewRootCmd creates the root cobra command: running `hydraping` with no
// subcommand starts the live dashboard.
func NewRootCmd(version string) *cobra.Command {
	var (
		configPath string
		interval   time.Duration
		timeout    time.Duration
		noDNS      bool
		noICMP     bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "hydraping",
		Short: "Interactive multi-protocol reachability monitor",
		Long: `hydraping continuously probes a set of configured endpoints over the
layers that apply to each — DNS, ICMP, TCP/UDP connect, HTTP — and renders
a live scrolling dashboard of latency and active problems.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				logger = zap.NewNop()
			}
			defer logger.Sync() //nolint:errcheck

			opts := runtime.Options{
				ConfigPath: configPath,
				Interval:   interval,
				Timeout:    timeout,
				NoDNS:      noDNS,
				NoICMP:     noICMP,
				NoColor:    noColor,
			}
			code := runtime.Run(cmd.Context(), opts, logger)
			if code != runtime.ExitOK {
				os.Exit(code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to settings.toml (default: $HYDRAPING_CONFIG or ~/.config/hydraping/settings.toml)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "probe interval, overrides checks.interval_seconds")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-check timeout, overrides checks.timeout_seconds")
	cmd.Flags().BoolVar(&noDNS, "no-dns", false, "disable DNS resolution checks")
	cmd.Flags().BoolVar(&noICMP, "no-icmp", false, "disable ICMP echo checks")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}
