package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/anp/internal/config"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "ANP_LOG_LEVEL"
	EnvLogTimestamp = "ANP_LOG_TIMESTAMP"
	EnvLogNoColor   = "ANP_LOG_NOCOLOR"
	EnvLogFormat    = "ANP_LOG_FORMAT"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Settings is the resolved logger setup.
type Settings struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	JSON      bool
	Out       io.Writer
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		s := defaultSettings(profile)
		applyEnvOverrides(&s)
		Install(s)
	})
}

// Apply installs the logger described by a config file section. Environment
// overrides still win.
func Apply(cfg config.LogConfig) {
	s := defaultSettings(ProfileRuntime)
	if lvl, ok := parseLevel(cfg.Level); ok {
		s.Level = lvl
	}
	s.Timestamp = cfg.Timestamp
	s.NoColor = s.NoColor || cfg.NoColor
	s.JSON = strings.EqualFold(strings.TrimSpace(cfg.Format), "json")
	applyEnvOverrides(&s)
	Install(s)
}

// Install replaces the global zerolog logger.
func Install(s Settings) {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	var w io.Writer = out
	if !s.JSON {
		cw := zerolog.ConsoleWriter{
			Out:        consoleOut(out, s.NoColor),
			NoColor:    s.NoColor,
			TimeFormat: time.RFC3339,
		}
		if !s.Timestamp {
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		w = cw
	}

	ctx := zerolog.New(w).Level(s.Level).With()
	if s.Timestamp {
		ctx = ctx.Timestamp()
	}
	zerolog.SetGlobalLevel(s.Level)
	log.Logger = ctx.Logger()
}

// Component returns the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func consoleOut(out io.Writer, noColor bool) io.Writer {
	if f, ok := out.(*os.File); ok && !noColor {
		return colorable.NewColorable(f)
	}
	return colorable.NewNonColorable(out)
}

func defaultSettings(profile Profile) Settings {
	s := Settings{NoColor: !stdoutIsTerminal()}
	switch profile {
	case ProfileTest:
		s.Level = zerolog.DebugLevel
		s.Timestamp = false
	default:
		s.Level = zerolog.InfoLevel
		s.Timestamp = true
	}
	return s
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func applyEnvOverrides(s *Settings) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		s.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		s.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		s.NoColor = v
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogFormat))) {
	case "json":
		s.JSON = true
	case "console", "text":
		s.JSON = false
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none", "inactive":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
