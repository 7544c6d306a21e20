package driver

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"oxcheck/internal/borrowck"
)

// DefaultConfigFile is looked up next to the analyzed program when the user
// passes no explicit --config.
const DefaultConfigFile = "oxcheck.toml"

// Config mirrors the oxcheck.toml layout.
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Output   OutputConfig   `toml:"output"`
}

// AnalysisConfig is the [analysis] section.
type AnalysisConfig struct {
	CopyExempt     bool `toml:"copy_exempt"`
	LoopIterations int  `toml:"loop_iterations"`
	MaxDiagnostics int  `toml:"max_diagnostics"`
	Jobs           int  `toml:"jobs"`
}

// OutputConfig is the [output] section.
type OutputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	opts := borrowck.DefaultOptions()
	return Config{
		Analysis: AnalysisConfig{
			CopyExempt:     opts.CopyTypesExempt,
			LoopIterations: opts.LoopIterations,
			MaxDiagnostics: opts.MaxDiagnostics,
		},
		Output: OutputConfig{Format: "pretty", Color: "auto"},
	}
}

// LoadConfig reads a TOML config, filling unspecified sections with
// defaults. A missing file is not an error: defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	// Decode поверх дефолтов: неуказанные ключи сохраняют значения по умолчанию
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, nil
}

// Options converts the [analysis] section into checker options.
func (c Config) Options() borrowck.Options {
	return borrowck.Options{
		CopyTypesExempt: c.Analysis.CopyExempt,
		LoopIterations:  c.Analysis.LoopIterations,
		MaxDiagnostics:  c.Analysis.MaxDiagnostics,
	}
}
