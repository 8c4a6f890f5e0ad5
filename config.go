package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBURL        string
	ListenAddr   string
	JWTSecret    []byte
	SessionTTL   time.Duration
	StationsFile string
	StaticDir    string
	DeezerAPIURL string
	DevLogin     bool

	Spotify SpotifyConfig
	Log     LogConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBURL:        getEnv("DB_URL", "sqlite://vibezone.db"),
		ListenAddr:   getEnv("LISTEN_ADDR", ":3000"),
		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		StationsFile: getEnv("STATIONS_FILE", "static/data/stations.json"),
		StaticDir:    getEnv("STATIC_DIR", "static"),
		DeezerAPIURL: getEnv("DEEZER_API_URL", defaultDeezerAPIURL),
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RedirectURL:  getEnv("SPOTIFY_REDIRECT_URL", "http://localhost:3000/callback"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "72h")); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.DevLogin, err = parseBool("DEV_LOGIN"); err != nil {
		return nil, err
	}
	if cfg.Log.Pretty, err = parseBool("LOG_PRETTY"); err != nil {
		return nil, err
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func parseBool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
