package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ymatsui/memoboard/internal/config"
	"github.com/ymatsui/memoboard/internal/identity"
	"github.com/ymatsui/memoboard/internal/server"
)

func main() {
	// .env is a local-development convenience; in real deployments the
	// environment is already populated and the file won't exist.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	srv, err := server.New(server.Config{
		Port:   cfg.Port,
		DBPath: cfg.DBPath,
		Identity: identity.Config{
			BaseURL:      cfg.IdentityBaseURL,
			JWTSecret:    cfg.IdentityJWTSecret,
			ClientID:     cfg.IdentityClientID,
			ClientSecret: cfg.IdentityClientSecret,
			CallbackURL:  cfg.IdentityCallbackURL,
		},
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
