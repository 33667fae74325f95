// Package bridge is the shared process wiring for every backend binary:
// flags, logging, config, options, pipeline, listener, signals. The binaries
// differ only in how they build their notifier.
package bridge

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/alerter"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/notifier"
	"github.com/alertbridge/alertbridge/internal/options"
	"github.com/alertbridge/alertbridge/internal/parser"
	"github.com/alertbridge/alertbridge/internal/server"
	"github.com/alertbridge/alertbridge/internal/version"
)

// Setup builds the backend notifier from resolved configuration.
type Setup func(f *config.File, log zerolog.Logger) (notifier.Notifier, error)

const shutdownTimeout = 5 * time.Second

// Run is the main loop of a bridge binary. It exits the process non-zero on
// any terminal configuration failure, before serving.
func Run(backend string, markdown bool, setup Setup) {
	configPath := flag.String("config", "", "path to optional YAML config file")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("bridge", backend).
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("config_path", *configPath).Msg("failed to load configuration")
	}

	level := *logLevel
	if level == "" {
		level = config.ResolveLogLevel(cfg)
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	logger.Info().Str("version", version.Full()).Msg("starting alertbridge")

	opts, err := options.Resolve(options.Options{}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve notifier options")
	}

	n, err := setup(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure backend")
	}

	pipe := alerter.NewPipeline(opts, logger)
	parseOpts := parser.Options{
		LevelInTitle:      opts.LevelInTitle,
		ResolvedIndicator: opts.ResolvedIndicator,
		Markdown:          markdown,
	}

	listen := config.ResolveListen(cfg)
	srv := server.New(n, pipe, parseOpts, listen.Port, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listener error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
	logger.Info().Msg("stopped")
}
