package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/vaarrunii/VidVault/config"
	"github.com/vaarrunii/VidVault/internal/handle"
	"github.com/vaarrunii/VidVault/internal/server"
	"github.com/vaarrunii/VidVault/internal/session"
	"github.com/vaarrunii/VidVault/internal/store/db"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.DefaultConfig()
	if path := os.Getenv("VIDVAULT_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			logger.Fatal().Err(err).Str("path", path).Msg("failed to load config")
		}
		cfg = loaded
	}

	database, err := db.NewWithChunkSize(cfg.DBPath, cfg.DBChunkSize, logger)
	if err != nil {
		// Open failures are fatal to the whole subsystem: surfaced
		// immediately, never retried.
		logger.Fatal().Err(err).Msg("failed to open video library store")
	}

	sessions, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session store")
	}

	media := handle.NewRegistry("/media/")
	videos := handle.NewManager(media, database, logger)

	srv, err := server.New(cfg, database, videos, media, sessions, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize server")
	}

	go func() {
		logger.Info().Int("port", cfg.Port).Msg("starting VidVault server")
		if err := srv.Run(); err != nil {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	// Handles hold native resources; release them before the process exits.
	videos.RevokeAll()

	if err := sessions.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close session store")
	}
	if err := database.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close video library store")
	}
}
