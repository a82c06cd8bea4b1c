package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	tally "github.com/tally-labs/tally"
	"github.com/tally-labs/tally/internal/cliconfig"
	"github.com/tally-labs/tally/pkg/log"
)

const helpDescription = `
Serve a single durable counter over HTTP.

Routes:
  GET  /            read the counter as plain text
  POST /increment   add one
  POST /decrement   subtract one

The counter is persisted to <state-dir>/counter.json after every
request and restored on startup. Configure via file, env (TALLY_*),
or flags.
`

var exampleUsage = strings.TrimSpace(`
  tallyd
  tallyd --listen 0.0.0.0 --port 9090 --state-dir /var/lib/tally
  tallyd --config $HOME/.tally/config.toml --watch-state
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	godotenv.Load()

	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "tallyd",
		Short:   "Serve a single durable counter over HTTP",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.tally/config.toml), then apply env and flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment variables (TALLY_*) override file config but
			// are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Info().Interface("config", cfg).Msg("configuration")

			srv, err := tally.New(cfg.Service(),
				tally.WithLogger(log.NewZerologAdapterWithLogger(logger)),
			)
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("start service: %w", err)
			}

			<-sigCh
			logger.Info().Msg("received signal, stopping...")

			if err := srv.Stop(); err != nil {
				return fmt.Errorf("stop service: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.tally/config.toml)")
	root.Flags().StringVar(&cfg.Listen, "listen", cfg.Listen, "address to bind")
	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "port to bind")
	root.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for counter.json (default: ~/.tally)")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP read/write timeout")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	root.Flags().BoolVar(&cfg.WatchState, "watch-state", cfg.WatchState, "reload the counter when counter.json changes on disk")
	root.Flags().DurationVar(&cfg.WatchDebounce, "watch-debounce", cfg.WatchDebounce, "debounce delay for state watching")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("tallyd")
		os.Exit(1)
	}
}
