package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	wanttowatch "github.com/Scroti/want-to-watch"
	"github.com/Scroti/want-to-watch/internal/auth"
	"github.com/Scroti/want-to-watch/internal/config"
	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/handlers"
	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("database connection failed")
	}
	defer db.Close()

	migrations, err := wanttowatch.MigrationsFS()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load migrations")
	}
	if err := database.RunMigrations(ctx, db, migrations); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
	store := database.NewStore(db)

	jwtValidator, err := auth.NewValidator(cfg.Auth.Domain, cfg.Auth.Audience)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create auth validator")
	}

	tmdbClient := services.NewTMDBClient(cfg.TMDB)

	router := handlers.NewRouter(handlers.Deps{
		Store:         store,
		TMDB:          tmdbClient,
		TMDBStats:     tmdbClient.Stats,
		Activities:    services.NewActivityWriter(store),
		Notifications: services.NewNotificationWriter(store),
		RequireAuth:   auth.RequireAuth(jwtValidator),
		OptionalAuth:  auth.OptionalAuth(jwtValidator),
		Security:      cfg.Security,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
