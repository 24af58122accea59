package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/logging"
	"github.com/arthur-debert/dupes/pkg/paths"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix prefixes every environment override, e.g. DUPES_WORKERS
const EnvPrefix = "DUPES"

// Config is the effective configuration
type Config struct {
	Workers        int      `toml:"workers" envconfig:"WORKERS"`
	ParallelGroups int      `toml:"parallel_groups" envconfig:"PARALLEL_GROUPS"`
	IgnoreNames    []string `toml:"ignore_names" envconfig:"IGNORE_NAMES"`
	Format         string   `toml:"format" envconfig:"FORMAT"`
	Verify         bool     `toml:"verify" envconfig:"VERIFY"`
	SelectLimit    int      `toml:"select_limit" envconfig:"SELECT_LIMIT"`

	// Sources lists the files that were merged, in load order
	Sources []string `toml:"-" ignored:"true"`
}

// LoadOptions locate the configuration layers
type LoadOptions struct {
	// Root is the scan root; its .dupes.toml is merged when present.
	Root string
	// File is an explicit configuration file; it must exist.
	File string
}

// GetDefaultsContent returns the embedded default configuration
func GetDefaultsContent() string {
	return string(defaultConfig)
}

// Default returns the embedded defaults only
func Default() (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(defaultConfig, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse embedded defaults")
	}
	return &cfg, nil
}

// Load merges every configuration layer and validates the result
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")

	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	optional := []string{paths.ConfigFilePath()}
	if opts.Root != "" {
		optional = append(optional, filepath.Join(opts.Root, paths.RootConfigFile))
	}
	for _, path := range optional {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", opts.File).WithPath(opts.File)
		}
		if err := cfg.mergeFile(opts.File); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to read environment overrides")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Strs("sources", cfg.Sources).
		Int("workers", cfg.Workers).
		Strs("ignoreNames", cfg.IgnoreNames).
		Msg("Configuration loaded")
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config file %s", path).WithPath(path)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to parse TOML in %s", path).WithPath(path)
	}
	c.Sources = append(c.Sources, path)
	return nil
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Newf(errors.ErrConfigValid, "workers must not be negative, got %d", c.Workers)
	}
	if c.ParallelGroups < 0 {
		return errors.Newf(errors.ErrConfigValid, "parallel_groups must not be negative, got %d", c.ParallelGroups)
	}
	if c.SelectLimit < 0 {
		return errors.Newf(errors.ErrConfigValid, "select_limit must not be negative, got %d", c.SelectLimit)
	}
	switch c.Format {
	case "", "auto", "term", "terminal", "text", "plain", "json":
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown format %q", c.Format)
	}
	for _, pattern := range c.IgnoreNames {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "bad ignore pattern %q", pattern)
		}
	}
	return nil
}

// Marshal renders the effective configuration as TOML
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
