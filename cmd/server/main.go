package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pokedex_service/internal/auth"
	"pokedex_service/internal/config"
	"pokedex_service/internal/http_server/router"
	"pokedex_service/internal/ledger"
	"pokedex_service/internal/lib/jwt"
	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/lib/notification"
	"pokedex_service/internal/lib/tracing"
	"pokedex_service/internal/pokeapi"
	"pokedex_service/internal/rabbitmq"
	"pokedex_service/internal/storage/postgres"
	"pokedex_service/internal/storage/sqlite"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type repository interface {
	auth.UserSaver
	auth.UserProvider
	ledger.SpeciesRepo
	ledger.CatchRepo
	Close()
}

func main() {
	cfg := config.MustLoad(config.FetchConfigPath())

	log := setupLogger(cfg.Env)

	log.Info("starting pokedex service",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		log.Error("failed to set up tracing", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("failed to flush traces", sl.Err(err))
		}
	}()

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Error("failed to open storage", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	issuer, err := jwt.New(cfg.Tokens)
	if err != nil {
		log.Error("failed to init token issuer", sl.Err(err))
		os.Exit(1)
	}

	var publisher notification.Publisher = notification.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			log.Error("failed to connect rabbitmq", sl.Err(err))
			os.Exit(1)
		}
		defer msgBroker.Close()

		publisher = msgBroker
	} else {
		log.Warn("rabbitmq url is empty, welcome messages are disabled")
	}

	authService := auth.New(log, storage, storage, issuer, cfg.Passwords.BcryptCost)
	catchLedger := ledger.New(log, storage, storage)
	species := pokeapi.New(cfg.PokeAPI.BaseURL, cfg.PokeAPI.Timeout)

	r := router.New(log, router.Deps{
		Users:     authService,
		Tokens:    issuer,
		Ledger:    catchLedger,
		Species:   species,
		Publisher: publisher,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      r,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout + cfg.PokeAPI.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErr := make(chan error, 1)

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		log.Error("Server failed", sl.Err(err))
	}

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (repository, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		repo, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.StorageDriverSQLite:
		s, err := sqlite.New(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
