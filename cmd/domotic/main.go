package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"domotic/internal/adapters/input/http"
	"domotic/internal/adapters/output/ledger"
	"domotic/internal/adapters/output/persistence"
	"domotic/internal/adapters/output/tplink"
	"domotic/internal/config"
	"domotic/internal/domain/service"
	"domotic/internal/ports"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	Config string `short:"c" long:"config" default:"config.yaml" description:"Path to configuration file."`
}

func main() {
	opts := &options{}
	if _, err := flags.Parse(opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.Log)
	log.Info().Str("config", opts.Config).Msg("Starting domotic")

	repo, err := persistence.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Failed to open device store")
	}
	defer repo.Close()

	client := tplink.NewClient(tplink.Config{
		URL:      cfg.Cloud.URL,
		Token:    cfg.Cloud.Token,
		Timeout:  cfg.Cloud.Timeout.Duration(),
		CacheTTL: cfg.Cloud.CacheTTL.Duration(),
	})

	ctx := signalContext()

	var recorder ports.ActivityRecorder = ledger.Nop{}
	if cfg.Ledger.IsEnabled() {
		l, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Ledger.Path).Msg("Failed to open activity ledger")
		}
		defer l.Close()
		go l.RunCleanup(ctx, cfg.Ledger.CleanupInterval.Duration(), cfg.Ledger.Retention.Duration())
		recorder = l
	}

	panel := service.NewPanelService(repo, client, recorder, *cfg.DefaultScene)

	server := http.NewServer(panel, http.Config{
		Addr:            cfg.Server.Addr,
		AllowedPrefixes: cfg.Server.AllowedPrefixes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration(),
	})
	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server stopped")
		return
	}
	log.Info().Msg("Stopped")
}

func setupLogging(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !cfg.Colors,
		})
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}
