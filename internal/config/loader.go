package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if MOAT_CONFIG is set
//  3. env (prefix MOAT_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MOAT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MOAT_ADDR, MOAT_DATA_DIR, MOAT_COLLECT_TIMEOUT, ...
	// Keys map flat: MOAT_COLLECT_TIMEOUT -> collect_timeout.
	envProvider := env.Provider("MOAT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "moat_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.OutputDir == "":
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	case c.DataDir == c.OutputDir:
		return fmt.Errorf("%w: data_dir and output_dir must differ; the output dir is wiped every run", ErrInvalidConfig)
	case c.CollectTimeout <= 0:
		return fmt.Errorf("%w: collect_timeout must be positive", ErrInvalidConfig)
	case c.FetchWorkers <= 0:
		return fmt.Errorf("%w: fetch_workers must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch_size must be positive", ErrInvalidConfig)
	case !c.RunOnce && strings.TrimSpace(c.Schedule) == "":
		return fmt.Errorf("%w: schedule must be set unless run_once is enabled", ErrInvalidConfig)
	}
	return nil
}
