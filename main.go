package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *Config, log zerolog.Logger) error {
	var (
		userRepo       UserRepository
		favoriteRepo   FavoriteRepository
		collectionRepo CollectionRepository
	)

	u, err := url.Parse(cfg.DBURL)
	if err != nil {
		return fmt.Errorf("DB_URL: %w", err)
	}
	log.Info().Str("scheme", u.Scheme).Msg("opening database")
	switch u.Scheme {
	case "sqlite":
		sqlitedb, err := NewSQLiteRepository(u.Host + u.Path)
		if err != nil {
			return err
		}
		userRepo, favoriteRepo, collectionRepo = sqlitedb, sqlitedb, sqlitedb

	case "postgres", "postgresql":
		pgdb, err := NewPostgresRepository(cfg.DBURL)
		if err != nil {
			return err
		}
		userRepo, favoriteRepo, collectionRepo = pgdb, pgdb, pgdb

	default:
		return fmt.Errorf("DB_URL: unsupported scheme %q", u.Scheme)
	}

	metrics := NewMetrics()
	service := NewService(userRepo, favoriteRepo, collectionRepo,
		NewDeezerClient(cfg.DeezerAPIURL), metrics, log.With().Str("component", "service").Logger())
	defer service.close()

	sessions := NewSessions(cfg.JWTSecret, cfg.SessionTTL)
	var login *SpotifyLogin
	if cfg.Spotify.ClientID != "" {
		login = NewSpotifyLogin(cfg.Spotify, service, sessions, log.With().Str("component", "login").Logger())
	} else {
		log.Warn().Msg("SPOTIFY_CLIENT_ID not set, spotify login disabled")
	}

	echoRouter := NewHTTPRouter(service, RouterOptions{
		Stations:  NewStationCatalogue(cfg.StationsFile, log),
		Sessions:  sessions,
		Login:     login,
		Metrics:   metrics,
		StaticDir: cfg.StaticDir,
		DevLogin:  cfg.DevLogin,
		Log:       log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		errc <- echoRouter.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errc:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return echoRouter.Shutdown(shutdownCtx)
}
