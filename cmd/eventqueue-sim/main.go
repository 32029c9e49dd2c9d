// Command eventqueue-sim drives producer and consumer systems over a typed
// event queue for a number of cycles and verifies that every consumer saw
// every event exactly once.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aradilov/eventqueue/host"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		logLevel   string
		tickRate   time.Duration
		opts       = simOptions{Cycles: 600, Producers: 4, Consumers: 2, Events: 128}
	)

	cmd := &cobra.Command{
		Use:          "eventqueue-sim",
		Short:        "Simulate cycles of event producers and consumers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := host.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = host.LoadConfig(configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("tick") {
				cfg.TickRate = tickRate
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, err := host.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger := host.NewLogger(cmd.ErrOrStderr(), level)
			opts.TickRate = cfg.TickRate

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			start := time.Now()
			res, err := runSim(ctx, cfg, opts, logger)
			for _, s := range res.Stats {
				logger.Info().
					Str("events", s.Name).
					Uint64("written", s.Written).
					Uint64("swaps", s.Swaps).
					Uint64("grows", s.Grows).
					Uint64("reads", s.Reads).
					Int("capacity", s.Capacity).
					Log("queue stats")
			}
			if err != nil {
				return fmt.Errorf("simulation failed after %d cycles: %w", res.Cycles, err)
			}
			logger.Info().
				Uint64("cycles", res.Cycles).
				Uint64("events", res.Written).
				Int("consumers", len(res.Consumed)).
				Dur("took", time.Since(start)).
				Log("simulation ok")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML config file")
	f.StringVar(&logLevel, "log-level", "info", "log level: err, warning, info, debug, trace")
	f.DurationVar(&tickRate, "tick", 0, "cycle period, 0 runs cycles back to back (default from config)")
	f.IntVar(&opts.Cycles, "cycles", opts.Cycles, "cycles to run, 0 runs until interrupted")
	f.IntVar(&opts.Producers, "producers", opts.Producers, "producer systems")
	f.IntVar(&opts.Consumers, "consumers", opts.Consumers, "consumer systems")
	f.IntVar(&opts.Events, "events", opts.Events, "events per producer per cycle")

	return cmd
}
