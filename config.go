package drive

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// DriverLocal is the Config.Driver value for the local disk driver.
const DriverLocal = "local"

// Config is a driver's construction-time configuration.
type Config struct {
	Driver string `yaml:"driver"`         // storage driver: "local"
	Root   string `yaml:"root,omitempty"` // base directory
}

// ParseConfig decodes a YAML (or JSON) driver configuration and validates it.
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b), yaml.DisallowUnknownField())
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing driver config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadConfig reads and parses the driver configuration file name.
func ReadConfig(name string) (Config, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return Config{}, fmt.Errorf("reading driver config: %w", err)
	}
	return ParseConfig(b)
}

// Validate checks that cfg names a known driver and includes the settings it
// requires.
func (cfg Config) Validate() error {
	switch cfg.Driver {
	case DriverLocal:
		if cfg.Root == "" {
			return errors.New("'root' config is required for the local driver")
		}
		return nil
	case "":
		return errors.New("'driver' config is required")
	default:
		return fmt.Errorf("invalid storage driver: '%s'", cfg.Driver)
	}
}

// Marshal encodes cfg as YAML.
func (cfg Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}
