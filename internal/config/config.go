// Package config defines the analysis configuration and its loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and PPDA_ env vars on top.
// - Validation errors wrap ErrInvalidConfig, loading errors wrap ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/ppda/internal/domain/defensive"
	"github.com/okian/ppda/internal/domain/pitch"
)

// Event source kinds.
const (
	SourceJSONL  = "jsonl"
	SourceSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Source selects where events are read from: jsonl or sqlite.
	Source string `koanf:"source"`

	// InputPath is the JSON-lines event file for the jsonl source.
	InputPath string `koanf:"input_path"`

	// DatabasePath is the SQLite file for the sqlite source and for persistence.
	DatabasePath string `koanf:"database_path"`

	// OutputPath receives the JSON report; empty means stdout.
	OutputPath string `koanf:"output_path"`

	// Persist writes game states and PPDA back to the SQLite database.
	Persist bool `koanf:"persist"`

	// WorkerCount bounds the number of matches analyzed concurrently.
	WorkerCount int `koanf:"worker_count"`

	// MetricsAddr exposes /metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// Pitch geometry.
	FieldLength         float64 `koanf:"field_length"`
	FieldWidth          float64 `koanf:"field_width"`
	PressLineFraction   float64 `koanf:"press_line_fraction"`
	BuildUpLineFraction float64 `koanf:"build_up_line_fraction"`

	// FoulSubEvents lists the sub-event types that count as fouls.
	FoulSubEvents []string `koanf:"foul_sub_events"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Source:              SourceJSONL,
		InputPath:           "events.jsonl",
		DatabasePath:        "ppda.db",
		WorkerCount:         runtime.NumCPU(),
		FieldLength:         pitch.DefaultFieldLength,
		FieldWidth:          pitch.DefaultFieldWidth,
		PressLineFraction:   pitch.DefaultPressLineFraction,
		BuildUpLineFraction: pitch.DefaultBuildUpLineFraction,
		FoulSubEvents:       defensive.DefaultFoulSubEvents(),
	}
}

// Geometry returns the configured pitch geometry.
func (c *Config) Geometry() (pitch.Geometry, error) {
	g, err := pitch.New(
		pitch.WithFieldSize(c.FieldLength, c.FieldWidth),
		pitch.WithPressLineFraction(c.PressLineFraction),
		pitch.WithBuildUpLineFraction(c.BuildUpLineFraction),
	)
	if err != nil {
		return pitch.Geometry{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return g, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceJSONL:
		if c.InputPath == "" {
			return fmt.Errorf("%w: input_path must not be empty for source %q", ErrInvalidConfig, c.Source)
		}
	case SourceSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: database_path must not be empty for source %q", ErrInvalidConfig, c.Source)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}
	if c.Persist && c.DatabasePath == "" {
		return fmt.Errorf("%w: persist requires database_path", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if _, err := c.Geometry(); err != nil {
		return err
	}
	return nil
}
