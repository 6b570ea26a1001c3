// Package config loads the YAML configuration shared by the polyroot CLI and
// tool server.
//
// A missing file is not an error: Load("") returns Default(). Values present
// in the file override the defaults field by field.
//
//	server:
//	  port: 8080
//	  read_timeout: 15s
//	solver:
//	  epsilon: 1e-9
//	  seeds: [-10, -3, -1, 0, 0.5, 1, 2, 5, 10]
//	  dedup_threshold: 1e-4
//	logging:
//	  level: info
//	  format: json
//	tracing:
//	  enabled: false
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/polyroot"
	"github.com/njchilds90/polyroot/internal/logging"
)

type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Solver  SolverConfig   `yaml:"solver"`
	Logging logging.Config `yaml:"logging"`
	Tracing TracingConfig  `yaml:"tracing"`
}

type ServerConfig struct {
	Port              int           `yaml:"port" validate:"min=1,max=65535"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// SolverConfig mirrors the polyroot options. Zero values for the optional
// knobs leave the library defaults in place.
type SolverConfig struct {
	Epsilon        float64   `yaml:"epsilon" validate:"gt=0"`
	Seeds          []float64 `yaml:"seeds" validate:"min=1"`
	DedupThreshold float64   `yaml:"dedup_threshold" validate:"gte=0"`
	NewtonEpsilon  float64   `yaml:"newton_epsilon" validate:"gte=0"`
	MaxIterations  int       `yaml:"max_iterations" validate:"gte=0,lte=100000"`
	PolishSteps    int       `yaml:"polish_steps" validate:"gte=0,lte=100"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name" validate:"required_if=Enabled true"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:              8080,
			MaxBodyBytes:      1 << 20,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Solver: SolverConfig{
			Epsilon:        polyroot.DefaultEpsilon,
			Seeds:          polyroot.DefaultSeeds(),
			DedupThreshold: polyroot.DefaultDedupThreshold,
			NewtonEpsilon:  polyroot.DefaultNewtonEpsilon,
			MaxIterations:  polyroot.DefaultMaxIterations,
		},
		Logging: logging.Config{Level: "info", Format: "json", Service: "polyroot"},
		Tracing: TracingConfig{ServiceName: "polyroot"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section. Field errors are flattened into one message
// naming the offending yaml paths.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Options converts the solver section into polyroot options.
func (s SolverConfig) Options() []polyroot.Option {
	opts := []polyroot.Option{
		polyroot.WithEpsilon(s.Epsilon),
		polyroot.WithSeeds(s.Seeds...),
		polyroot.WithDedupThreshold(s.DedupThreshold),
	}
	if s.NewtonEpsilon > 0 {
		opts = append(opts, polyroot.WithNewtonEpsilon(s.NewtonEpsilon))
	}
	if s.MaxIterations > 0 {
		opts = append(opts, polyroot.WithMaxIterations(s.MaxIterations))
	}
	if s.PolishSteps > 0 {
		opts = append(opts, polyroot.WithPolish(s.PolishSteps))
	}
	return opts
}
