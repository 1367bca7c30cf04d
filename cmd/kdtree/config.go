package main

import (
	"os"

	"github.com/ar90n/kdtree/metric"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Dimensions lists the CSV columns used as split keys. Empty means every
	// column of the input.
	Dimensions       []string `yaml:"dimensions"`
	Metric           string   `yaml:"metric"`
	Format           string   `yaml:"format"`
	Neighbors        uint     `yaml:"neighbors"`
	Radius           float64  `yaml:"radius"`
	Workers          uint     `yaml:"workers"`
	LogLevel         string   `yaml:"log_level"`
	LogFormat        string   `yaml:"log_format"`
	RebuildThreshold float64  `yaml:"rebuild_threshold"`
}

func defaultConfig() Config {
	return Config{
		Metric:           "euclidean",
		Format:           "gob",
		Neighbors:        1,
		LogLevel:         "info",
		LogFormat:        "text",
		RebuildThreshold: 2,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if _, ok := metric.ByName(cfg.Metric); !ok {
		return errors.Newf("unknown metric: %s", cfg.Metric)
	}
	switch cfg.Format {
	case "gob", "json", "msgpack", "zstd":
	default:
		return errors.Newf("unknown format: %s", cfg.Format)
	}
	if cfg.Neighbors < 1 {
		return errors.New("neighbors must be at least 1")
	}
	if cfg.Radius < 0 {
		return errors.New("radius must not be negative")
	}
	if cfg.RebuildThreshold < 1 {
		return errors.New("rebuild threshold must be at least 1")
	}
	return nil
}

// configFromContext layers flags that were set explicitly over the config
// file named by --config.
func configFromContext(c *cli.Context) (Config, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return Config{}, err
	}

	if c.IsSet("dims") {
		cfg.Dimensions = c.StringSlice("dims")
	}
	if c.IsSet("metric") {
		cfg.Metric = c.String("metric")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("neighbors") {
		cfg.Neighbors = c.Uint("neighbors")
	}
	if c.IsSet("radius") {
		cfg.Radius = c.Float64("radius")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Uint("workers")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("rebuild-threshold") {
		cfg.RebuildThreshold = c.Float64("rebuild-threshold")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
