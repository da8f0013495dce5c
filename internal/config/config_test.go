package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
	"github.com/matzehuels/jsondiagram/pkg/layout"
)

// isolate runs the test in an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("direction", "LR", "")
	fs.String("density", "medium", "")
	fs.Int("level", 999, "")
	fs.Bool("no-cache", false, "")
	fs.String("redis-url", "", "")
	fs.Duration("cache-ttl", 0, "")
	fs.String("addr", "", "")
	fs.Bool("verbose", false, "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, layout.LeftToRight, cfg.LayoutDirection())
	assert.Equal(t, layout.Medium, cfg.LayoutDensity())
	assert.Equal(t, 999, cfg.Level)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDelay)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Disabled)
	assert.Empty(t, cfg.Cache.RedisURL)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Empty(t, cfg.File)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "jsondiagram.yaml"), `
direction: tb
density: compact
level: 3
search_delay: 150ms
cache:
  dir: /tmp/jd-cache
  ttl: 1h
server:
  addr: ":9000"
  allow_all_origins: true
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "jsondiagram.yaml", filepath.Base(cfg.File))
	assert.Equal(t, layout.TopToBottom, cfg.LayoutDirection())
	assert.Equal(t, layout.Compact, cfg.LayoutDensity())
	assert.Equal(t, 3, cfg.Level)
	assert.Equal(t, 150*time.Millisecond, cfg.SearchDelay)
	assert.Equal(t, "/tmp/jd-cache", cfg.Cache.Dir)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.AllowAllOrigins)
}

func TestLoadTOMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
direction = "TB"
density = "expanded"
level = 2

[cache]
redis_url = "redis://localhost:6379/0"
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, layout.TopToBottom, cfg.LayoutDirection())
	assert.Equal(t, layout.Expanded, cfg.LayoutDensity())
	assert.Equal(t, 2, cfg.Level)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load("nope.yaml", nil)
	assert.Error(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "jsondiagram.yml"), "direction: TB\ndensity: compact\nlevel: 4\n")
	t.Setenv("JSONDIAGRAM_DENSITY", "expanded")
	t.Setenv("JSONDIAGRAM_LEVEL", "5")
	t.Setenv("JSONDIAGRAM_SERVER__ADDR", ":7000")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--level", "6", "--no-cache", "--cache-ttl", "2m"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, layout.TopToBottom, cfg.LayoutDirection(), "file beats defaults")
	assert.Equal(t, layout.Expanded, cfg.LayoutDensity(), "env beats file")
	assert.Equal(t, 6, cfg.Level, "flags beat env")
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.True(t, cfg.Cache.Disabled)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
}

func TestUnsetFlagsDoNotOverride(t *testing.T) {
	isolate(t)
	t.Setenv("JSONDIAGRAM_DIRECTION", "TB")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, layout.TopToBottom, cfg.LayoutDirection())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Direction: "lr", Density: "Medium", Level: 1, Server: ServerConfig{Addr: ":1"}}
	}

	tests := []struct {
		name   string
		modify func(*Config)
		code   derrors.Code
	}{
		{"valid", func(*Config) {}, ""},
		{"bad direction", func(c *Config) { c.Direction = "RL" }, derrors.ErrCodeInvalidDirection},
		{"bad density", func(c *Config) { c.Density = "huge" }, derrors.ErrCodeInvalidDensity},
		{"zero level", func(c *Config) { c.Level = 0 }, derrors.ErrCodeInvalidInput},
		{"negative delay", func(c *Config) { c.SearchDelay = -time.Second }, derrors.ErrCodeInvalidInput},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, derrors.ErrCodeInvalidInput},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, derrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, "LR", cfg.Direction)
				assert.Equal(t, "medium", cfg.Density)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, derrors.GetCode(err))
		})
	}
}

func TestTOMLParserRoundTrip(t *testing.T) {
	p := TOML()
	m, err := p.Unmarshal([]byte("level = 3\n[server]\naddr = \":1\"\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), m["level"])

	out, err := p.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[server]")
}
