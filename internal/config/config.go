// Package config loads jsondiagram settings.
//
// Values are layered with koanf, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. a config file (jsondiagram.yaml, jsondiagram.yml or jsondiagram.toml)
//  3. JSONDIAGRAM_* environment variables
//  4. command-line flags that were set explicitly
//
// Nested keys use a double underscore in environment variables, so
// JSONDIAGRAM_CACHE__REDIS_URL sets cache.redis_url.
package config

import (
	"time"

	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
	"github.com/matzehuels/jsondiagram/pkg/layout"
	"github.com/matzehuels/jsondiagram/pkg/search"
	"github.com/matzehuels/jsondiagram/pkg/visibility"
)

// Defaults.
const (
	DefaultAddr     = "127.0.0.1:8080"
	DefaultCacheTTL = layout.DefaultCacheTTL
)

// Config is the merged configuration.
type Config struct {
	Direction   string        `koanf:"direction"`
	Density     string        `koanf:"density"`
	Level       int           `koanf:"level"`
	SearchDelay time.Duration `koanf:"search_delay"`

	Cache  CacheConfig  `koanf:"cache"`
	Server ServerConfig `koanf:"server"`

	// File is the config file that was read, or "".
	File string `koanf:"-"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Disabled bool          `koanf:"disabled"`
	Dir      string        `koanf:"dir"`       // empty uses the XDG cache directory
	RedisURL string        `koanf:"redis_url"` // non-empty selects redis over the file cache
	TTL      time.Duration `koanf:"ttl"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr            string `koanf:"addr"`
	AllowAllOrigins bool   `koanf:"allow_all_origins"`
}

func defaults() map[string]any {
	return map[string]any{
		"direction":                string(layout.DefaultDirection),
		"density":                  string(layout.DefaultDensity),
		"level":                    visibility.NoLevelLimit,
		"search_delay":             search.DefaultDelay,
		"cache.disabled":           false,
		"cache.dir":                "",
		"cache.redis_url":          "",
		"cache.ttl":                DefaultCacheTTL,
		"server.addr":              DefaultAddr,
		"server.allow_all_origins": false,
	}
}

// Validate checks every field and normalizes direction and density.
func (c *Config) Validate() error {
	dir, err := layout.ParseDirection(c.Direction)
	if err != nil {
		return err
	}
	density, err := layout.ParseDensity(c.Density)
	if err != nil {
		return err
	}
	c.Direction, c.Density = string(dir), string(density)

	if c.Level < 1 {
		return derrors.New(derrors.ErrCodeInvalidInput, "level must be at least 1, got %d", c.Level)
	}
	if c.SearchDelay < 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "search_delay must not be negative")
	}
	if c.Cache.TTL < 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return derrors.New(derrors.ErrCodeInvalidInput, "server.addr must not be empty")
	}
	return nil
}

// LayoutDirection returns the configured direction. Call after Validate.
func (c *Config) LayoutDirection() layout.Direction { return layout.Direction(c.Direction) }

// LayoutDensity returns the configured density. Call after Validate.
func (c *Config) LayoutDensity() layout.Density { return layout.Density(c.Density) }
