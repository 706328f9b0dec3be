package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"l3gen/internal/domain"
	"l3gen/internal/gen"
)

// Config holds every application setting. Values load from the yaml file
// first, then environment variables override.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Generator struct {
		Seed           int64   `yaml:"seed"`
		StartTimestamp int64   `yaml:"start_timestamp"`
		TimestampStep  int64   `yaml:"timestamp_step"`
		MinPrice       float64 `yaml:"min_price"`
		MaxPrice       float64 `yaml:"max_price"`
		PhaseTargets   []int   `yaml:"phase_targets"`
		ToleranceMin   int     `yaml:"tolerance_min"`
		ToleranceMax   int     `yaml:"tolerance_max"`
		MaxSkips       int     `yaml:"max_skips"`
		OutputPath     string  `yaml:"output_path"`
	} `yaml:"generator"`

	Ingest struct {
		DBPath    string `yaml:"db_path"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"ingest"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	g := &c.Generator

	if g.TimestampStep <= 0 {
		return domain.NewConfigError("generator.timestamp_step", "must be positive, got %d", g.TimestampStep)
	}
	if g.MinPrice >= g.MaxPrice {
		return domain.NewConfigError("generator.min_price", "min %.2f must be below max %.2f", g.MinPrice, g.MaxPrice)
	}
	if len(g.PhaseTargets) != 4 {
		return domain.NewConfigError("generator.phase_targets", "want 4 phase targets, got %d", len(g.PhaseTargets))
	}
	for i, t := range g.PhaseTargets {
		if t <= 0 {
			return domain.NewConfigError("generator.phase_targets", "phase %d target must be positive, got %d", i+1, t)
		}
	}
	if g.ToleranceMin > g.ToleranceMax {
		return domain.NewConfigError("generator.tolerance_min", "band [%d, %d] is empty", g.ToleranceMin, g.ToleranceMax)
	}
	if g.MaxSkips <= 0 {
		return domain.NewConfigError("generator.max_skips", "must be positive, got %d", g.MaxSkips)
	}
	if g.OutputPath == "" {
		return domain.NewConfigError("generator.output_path", "must not be empty")
	}
	if c.Ingest.DBPath == "" {
		return domain.NewConfigError("ingest.db_path", "must not be empty")
	}
	if c.Ingest.BatchSize <= 0 {
		return domain.NewConfigError("ingest.batch_size", "must be positive, got %d", c.Ingest.BatchSize)
	}

	return nil
}

// GeneratorParams maps the config onto one run's generation parameters.
func (c *Config) GeneratorParams() gen.Params {
	g := &c.Generator
	return gen.Params{
		Seed:           g.Seed,
		StartTimestamp: g.StartTimestamp,
		TimestampStep:  g.TimestampStep,
		MinPrice:       g.MinPrice,
		MaxPrice:       g.MaxPrice,
		Phase1Target:   g.PhaseTargets[0],
		Phase2Target:   g.PhaseTargets[1],
		Phase3Target:   g.PhaseTargets[2],
		Phase4Target:   g.PhaseTargets[3],
		ToleranceMin:   g.ToleranceMin,
		ToleranceMax:   g.ToleranceMax,
		MaxSkips:       g.MaxSkips,
	}
}

// overrideWithEnv applies environment variable overrides when present.
func overrideWithEnv(cfg *Config) {
	if seed := os.Getenv("L3GEN_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Generator.Seed = v
		}
	}
	if out := os.Getenv("L3GEN_OUTPUT"); out != "" {
		cfg.Generator.OutputPath = out
	}
	if db := os.Getenv("L3GEN_DB_PATH"); db != "" {
		cfg.Ingest.DBPath = db
	}
	if level := os.Getenv("L3GEN_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
