package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid")

// Config is the anpctl daemon configuration.
type Config struct {
	Listen    string          `toml:"listen" yaml:"listen"`
	Admin     AdminConfig     `toml:"admin" yaml:"admin"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	Transport TransportConfig `toml:"transport" yaml:"transport"`
	Reactor   ReactorConfig   `toml:"reactor" yaml:"reactor"`
}

type AdminConfig struct {
	Enabled     bool     `toml:"enabled" yaml:"enabled"`
	Listen      string   `toml:"listen" yaml:"listen"`
	CorsOrigins []string `toml:"cors_origins" yaml:"cors_origins"`
}

type LogConfig struct {
	Level     string `toml:"level" yaml:"level"`
	Format    string `toml:"format" yaml:"format"` // "console" or "json"
	Timestamp bool   `toml:"timestamp" yaml:"timestamp"`
	NoColor   bool   `toml:"no_color" yaml:"no_color"`
}

type TransportConfig struct {
	// MaxMessageBytes caps the declared payload size of inbound messages.
	MaxMessageBytes uint32 `toml:"max_message_bytes" yaml:"max_message_bytes"`
	LenientDecode   bool   `toml:"lenient_decode" yaml:"lenient_decode"`
}

type ReactorConfig struct {
	PollInterval Duration `toml:"poll_interval" yaml:"poll_interval"`
	// IdleTimeout closes peers with no traffic for this long; zero disables it.
	IdleTimeout Duration `toml:"idle_timeout" yaml:"idle_timeout"`
	// MaxPeers bounds attached peers; zero means no limit.
	MaxPeers int `toml:"max_peers" yaml:"max_peers"`
}

func Default() Config {
	return Config{
		Listen: "127.0.0.1:4400",
		Admin: AdminConfig{
			Enabled: false,
			Listen:  "127.0.0.1:4480",
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "console",
			Timestamp: true,
		},
		Transport: TransportConfig{
			MaxMessageBytes: protocol.MaxSize,
		},
		Reactor: ReactorConfig{
			PollInterval: Duration(250 * time.Millisecond),
			IdleTimeout:  Duration(5 * time.Minute),
			MaxPeers:     1024,
		},
	}
}

// Load reads a TOML or YAML file, chosen by extension, over Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config load failed (%s)", path)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	default:
		cfg, err = ParseTOML(data)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "config parse failed (%s)", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ParseTOML(data []byte) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Wrapf(ErrInvalid, "unknown key %q", undecoded[0].String())
	}
	if meta.IsDefined("admin", "listen") && !meta.IsDefined("admin", "enabled") {
		cfg.Admin.Enabled = true
	}
	cfg.normalize()
	return cfg, nil
}

func ParseYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Listen = strings.TrimSpace(c.Listen)
	c.Admin.Listen = strings.TrimSpace(c.Admin.Listen)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Transport.MaxMessageBytes == 0 {
		c.Transport.MaxMessageBytes = protocol.MaxSize
	}
	origins := make([]string, 0, len(c.Admin.CorsOrigins))
	for _, o := range c.Admin.CorsOrigins {
		if v := strings.TrimSpace(o); v != "" {
			origins = append(origins, v)
		}
	}
	c.Admin.CorsOrigins = origins
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.Wrap(ErrInvalid, "listen is required")
	}
	if c.Admin.Enabled && c.Admin.Listen == "" {
		return errors.Wrap(ErrInvalid, "admin.listen is required when admin is enabled")
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return errors.Wrapf(ErrInvalid, "log.level %q", c.Log.Level)
		}
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return errors.Wrapf(ErrInvalid, "log.format %q", c.Log.Format)
	}
	if c.Transport.MaxMessageBytes > protocol.MaxSize {
		return errors.Wrapf(ErrInvalid, "transport.max_message_bytes %d exceeds %d", c.Transport.MaxMessageBytes, protocol.MaxSize)
	}
	if c.Reactor.PollInterval <= 0 {
		return errors.Wrap(ErrInvalid, "reactor.poll_interval must be positive")
	}
	if c.Reactor.IdleTimeout < 0 {
		return errors.Wrap(ErrInvalid, "reactor.idle_timeout must not be negative")
	}
	if c.Reactor.MaxPeers < 0 {
		return errors.Wrap(ErrInvalid, "reactor.max_peers must not be negative")
	}
	return nil
}
