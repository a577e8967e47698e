package openpkg

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the analysis configuration. The zero value is usable; every
// knob has an engine default.
type Config struct {
	// MaxDepth bounds schema recursion. 0 means the formatter default.
	MaxDepth int `yaml:"maxDepth" validate:"gte=0,lte=200"`

	// EditDistanceMax caps nearest-name suggestion search in drift
	// findings. 0 means the detector default.
	EditDistanceMax int `yaml:"editDistanceMax" validate:"gte=0,lte=16"`

	// CoverageThreshold is the minimum acceptable package coverage score.
	// Checked by the check command and the badge endpoint coloring.
	CoverageThreshold int `yaml:"coverageThreshold" validate:"gte=0,lte=100"`

	// PlaceholderParam names destructured parameters that carry no
	// documentation hint. Empty means the serializer default.
	PlaceholderParam string `yaml:"placeholderParam"`

	// DisableDiscriminators turns off tagged-union detection.
	DisableDiscriminators bool `yaml:"disableDiscriminators"`

	// Builtins replaces the formatter's named-type allowlist. Nil keeps
	// the default list.
	Builtins []string `yaml:"builtins"`

	// Markers replaces the formatter's marker-member filter list. Nil
	// keeps the default list.
	Markers []string `yaml:"markers"`

	// ExampleGlobals are extra global names example code and links may
	// reference without drift findings.
	ExampleGlobals []string `yaml:"exampleGlobals"`
}

// Validate checks configured values against their allowed ranges.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML config file. A missing path returns the zero
// config rather than an error so callers can treat the file as optional.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
