// Command sceneinfo loads scene documents and prints their objects.
//
//	sceneinfo [-config file.toml] [-timeout d] [-dump] [-metrics out.prom] [-v] scene.json...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/benoitkugler/okscene/scenedoc"
	"github.com/benoitkugler/okscene/scenemetrics"
	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func initLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "sceneinfo").Logger()
}

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	timeout := flag.Duration("timeout", 0, "maximum loading time of one scene (overrides the configuration)")
	dump := flag.Bool("dump", false, "dump the loaded scenes")
	metricsPath := flag.String("metrics", "", "write the prometheus metrics to this file")
	verbose := flag.Bool("v", false, "log debug events")
	flag.Parse()

	logger := initLogger(*verbose)
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: sceneinfo [flags] scene.json...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			logger.Fatal().Err(err).Msg("invalid configuration")
		}
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}

	scenemetrics.Register()
	ctx := logger.WithContext(context.Background())
	failed := 0
	for _, path := range flag.Args() {
		if err := inspect(ctx, path, cfg, *dump); err != nil {
			logger.Error().Str("scene", path).Err(err).Msg("loading failed")
			failed++
		}
	}

	if *metricsPath != "" {
		if err := prometheus.WriteToTextfile(*metricsPath, prometheus.DefaultGatherer); err != nil {
			logger.Error().Err(err).Msg("writing metrics")
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// inspect loads one scene under the configured timeout and prints it
func inspect(ctx context.Context, path string, cfg config, dump bool) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	loader := cfg.Loader
	opts := scenedoc.ReadOptions{}
	opts.Loader = &loader
	opts.ErrorMode = cfg.ErrorMode

	start := time.Now()
	sc, err := scenedoc.ReadScene(ctx, path, opts)
	if err != nil {
		return err
	}
	defer sc.Dispose()
	zerolog.Ctx(ctx).Info().Str("scene", path).Int("objects", len(sc.Objects)).Dur("took", time.Since(start)).Msg("scene loaded")

	fmt.Printf("%s\n", path)
	describe(os.Stdout, sc)
	if dump {
		spew.Fdump(os.Stdout, sc)
	}
	return nil
}
