package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultFile is read when TEAMDRAW_CONFIG is unset and the file exists.
const DefaultFile = "teamdraw.yaml"

// Load builds the configuration. Values come from env-default tags, then the
// YAML file, then environment variables, each overriding the previous one.
// A missing file is an error only when TEAMDRAW_CONFIG names it.
func Load() (*Config, error) {
	var cfg Config

	file, named := os.LookupEnv("TEAMDRAW_CONFIG")
	if !named || file == "" {
		file, named = DefaultFile, false
	}

	err := cleanenv.ReadConfig(file, &cfg)
	switch {
	case err == nil:
	case !named && errors.Is(err, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
