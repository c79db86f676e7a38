package config

import (
	"fmt"
	"os"
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Template renders Default() in the given format ("toml" or "yaml").
func Template(format string) (string, error) {
	cfg := Default()
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "toml", "":
		out, err := gotoml.Marshal(cfg)
		if err != nil {
			return "", err
		}
		return templateHeader + string(out), nil
	case "yaml", "yml":
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return "", err
		}
		return templateHeader + string(out), nil
	default:
		return "", fmt.Errorf("unknown config format: %s", format)
	}
}

func WriteTemplate(path, format string, overwrite bool) error {
	template, err := Template(format)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const templateHeader = `# anpctl serve configuration
# durations use Go syntax: 250ms, 30s, 5m
`
