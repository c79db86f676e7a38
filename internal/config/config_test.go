package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/anp/internal/protocol"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadTOMLDefaultsAndOverrides(t *testing.T) {
	path := writeFile(t, "anp.toml", `
listen = "0.0.0.0:5500"

[admin]
listen = " 127.0.0.1:9090 "
cors_origins = ["http://localhost:3000", " "]

[transport]
max_message_bytes = 1048576
lenient_decode = true

[reactor]
idle_timeout = "30s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5500", cfg.Listen)
	assert.True(t, cfg.Admin.Enabled, "admin listen implies enabled")
	assert.Equal(t, "127.0.0.1:9090", cfg.Admin.Listen)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Admin.CorsOrigins)
	assert.Equal(t, uint32(1<<20), cfg.Transport.MaxMessageBytes)
	assert.True(t, cfg.Transport.LenientDecode)
	assert.Equal(t, 30*time.Second, cfg.Reactor.IdleTimeout.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.Reactor.PollInterval.Std())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadTOMLExplicitAdminDisabled(t *testing.T) {
	path := writeFile(t, "anp.toml", `
[admin]
enabled = false
listen = "127.0.0.1:9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoadTOMLRejectsUnknownKey(t *testing.T) {
	path := writeFile(t, "anp.toml", "listne = \"x\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid), "err=%v", err)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "anp.yaml", `
listen: 127.0.0.1:6000
log:
  level: DEBUG
  format: json
reactor:
  poll_interval: 50ms
  max_peers: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6000", cfg.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 50*time.Millisecond, cfg.Reactor.PollInterval.Std())
	assert.Equal(t, 8, cfg.Reactor.MaxPeers)
	assert.Equal(t, uint32(protocol.MaxSize), cfg.Transport.MaxMessageBytes)
}

func TestLoadYAMLRejectsUnknownKey(t *testing.T) {
	path := writeFile(t, "anp.yml", "reactor:\n  pol_interval: 1s\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyYAMLUsesDefaults(t *testing.T) {
	path := writeFile(t, "anp.yaml", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Listen, cfg.Listen)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty listen":      func(c *Config) { c.Listen = "" },
		"admin no listen":   func(c *Config) { c.Admin.Enabled = true; c.Admin.Listen = "" },
		"bad level":         func(c *Config) { c.Log.Level = "loud" },
		"bad format":        func(c *Config) { c.Log.Format = "xml" },
		"oversize messages": func(c *Config) { c.Transport.MaxMessageBytes = protocol.MaxSize + 1 },
		"zero poll":         func(c *Config) { c.Reactor.PollInterval = 0 },
		"negative idle":     func(c *Config) { c.Reactor.IdleTimeout = -1 },
		"negative peers":    func(c *Config) { c.Reactor.MaxPeers = -1 },
	}
	require.NoError(t, Default().Validate())
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeFile(t, "anp.toml", "[reactor]\npoll_interval = \"soon\"\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestTemplatesLoadBack(t *testing.T) {
	for _, format := range []string{"toml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "anp."+format)
			require.NoError(t, WriteTemplate(path, format, false))
			require.Error(t, WriteTemplate(path, format, false), "refuses to overwrite")
			require.NoError(t, WriteTemplate(path, format, true))

			cfg, err := Load(path)
			require.NoError(t, err)
			def := Default()
			assert.Equal(t, def.Listen, cfg.Listen)
			assert.Equal(t, def.Admin.Enabled, cfg.Admin.Enabled)
			assert.Equal(t, def.Transport, cfg.Transport)
			assert.Equal(t, def.Reactor, cfg.Reactor)
			assert.Equal(t, def.Log, cfg.Log)
		})
	}

	_, err := Template("ini")
	require.Error(t, err)
}
