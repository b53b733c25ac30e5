// Package config reads albumengine's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/amonks/albumengine/refresh"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	DB          string `env:"ALBUMENGINE_DB" envDefault:"albumengine.db"`
	LimiterFile string `env:"ALBUMENGINE_LIMITER_FILE" envDefault:"next-req"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Redis  Redis  `envPrefix:"REDIS_"`
	ITunes ITunes `envPrefix:"ITUNES_"`

	Artist TTL `envPrefix:"ARTIST_"`
	Album  TTL `envPrefix:"ALBUM_"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type ITunes struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://itunes.apple.com"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// TTL is a pair of lifetimes, in seconds.
type TTL struct {
	DBSeconds    int `env:"DB_TTL_SECONDS" envDefault:"86400"`
	CacheSeconds int `env:"CACHE_TTL_SECONDS" envDefault:"3600"`
}

func (t TTL) TTL() refresh.TTL {
	return refresh.TTL{
		DB:    time.Duration(t.DBSeconds) * time.Second,
		Cache: time.Duration(t.CacheSeconds) * time.Second,
	}
}

func (t TTL) validate(kind string) error {
	if t.DBSeconds <= 0 {
		return fmt.Errorf("%s db ttl must be positive, got %d", kind, t.DBSeconds)
	}
	if t.CacheSeconds <= 0 {
		return fmt.Errorf("%s cache ttl must be positive, got %d", kind, t.CacheSeconds)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := errors.Join(
		cfg.Artist.validate("artist"),
		cfg.Album.validate("album"),
	); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
