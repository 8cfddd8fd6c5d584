package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	pkgerrors "mifile/pkg/errors"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Index  IndexConfig  `yaml:"index"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	CacheSize int    `yaml:"cache_size"` // cached search responses, 0 disables
}

// IndexConfig holds the MI-File parameters used when a collection's index
// is built.
type IndexConfig struct {
	ReferenceObjects int    `yaml:"reference_objects"`
	Ki               int    `yaml:"ki"`
	Ks               int    `yaml:"ks"`
	MaxPosDiff       int    `yaml:"max_pos_diff"` // -1 means ki
	Amplification    int    `yaml:"amplification"`
	BuildWorkers     int    `yaml:"build_workers"`
	Seed             uint64 `yaml:"seed"`
	Space            string `yaml:"space"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used for any value a file leaves unset.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			CacheSize: 1024,
		},
		Index: IndexConfig{
			ReferenceObjects: 64,
			Ki:               8,
			Ks:               8,
			MaxPosDiff:       -1,
			Amplification:    2,
			BuildWorkers:     4,
			Seed:             1,
			Space:            "l2",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// FromFile reads a YAML file over the defaults and applies MIFILE_*
// environment overrides. An empty path yields defaults plus overrides.
func FromFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("MIFILE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MIFILE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MIFILE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("MIFILE_INDEX_SPACE"); v != "" {
		cfg.Index.Space = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MIFILE_SERVER_CACHE_SIZE", &cfg.Server.CacheSize},
		{"MIFILE_INDEX_REFERENCE_OBJECTS", &cfg.Index.ReferenceObjects},
		{"MIFILE_INDEX_KI", &cfg.Index.Ki},
		{"MIFILE_INDEX_KS", &cfg.Index.Ks},
		{"MIFILE_INDEX_MAX_POS_DIFF", &cfg.Index.MaxPosDiff},
		{"MIFILE_INDEX_AMPLIFICATION", &cfg.Index.Amplification},
		{"MIFILE_INDEX_BUILD_WORKERS", &cfg.Index.BuildWorkers},
	}
	for _, o := range ints {
		v := os.Getenv(o.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", pkgerrors.ErrInvalidConfig, o.key, v)
		}
		*o.dst = n
	}

	if v := os.Getenv("MIFILE_INDEX_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: MIFILE_INDEX_SEED=%q", pkgerrors.ErrInvalidConfig, v)
		}
		cfg.Index.Seed = seed
	}
	return nil
}

// Validate rejects values no index could be built with.
func (c *Config) Validate() error {
	idx := c.Index
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", pkgerrors.ErrInvalidConfig)
	case c.Server.CacheSize < 0:
		return fmt.Errorf("%w: server.cache_size %d is negative", pkgerrors.ErrInvalidConfig, c.Server.CacheSize)
	case idx.ReferenceObjects < 2:
		return fmt.Errorf("%w: index.reference_objects %d must be at least 2", pkgerrors.ErrInvalidConfig, idx.ReferenceObjects)
	case idx.Ki < 1 || idx.Ki >= idx.ReferenceObjects:
		return fmt.Errorf("%w: index.ki %d must be in [1, %d)", pkgerrors.ErrInvalidConfig, idx.Ki, idx.ReferenceObjects)
	case idx.Ks < 1 || idx.Ks >= idx.ReferenceObjects:
		return fmt.Errorf("%w: index.ks %d must be in [1, %d)", pkgerrors.ErrInvalidConfig, idx.Ks, idx.ReferenceObjects)
	case idx.MaxPosDiff < -1 || idx.MaxPosDiff > idx.Ki:
		return fmt.Errorf("%w: index.max_pos_diff %d must be -1 or in [0, %d]", pkgerrors.ErrInvalidConfig, idx.MaxPosDiff, idx.Ki)
	case idx.Amplification < 1:
		return fmt.Errorf("%w: index.amplification %d must be positive", pkgerrors.ErrInvalidConfig, idx.Amplification)
	case idx.BuildWorkers < 1:
		return fmt.Errorf("%w: index.build_workers %d must be positive", pkgerrors.ErrInvalidConfig, idx.BuildWorkers)
	}
	return nil
}
