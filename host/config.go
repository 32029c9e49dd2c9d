package host

import (
	"fmt"
	"os"
	"time"

	"github.com/aradilov/eventqueue"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = fmt.Errorf("invalid config")

// Config configures a Registry and its Runner.
type Config struct {
	// InitialCapacity is the per-buffer capacity of a newly registered queue.
	InitialCapacity int `yaml:"initial_capacity"`
	// Capacities overrides InitialCapacity per event type name, e.g. "main.Hit".
	Capacities map[string]int `yaml:"capacities"`
	// TickRate is the cycle period, zero runs cycles back to back.
	TickRate time.Duration `yaml:"tick_rate"`
	// LogLevel is a logiface level name, e.g. "info" or "debug".
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns 512 events per buffer, 60 cycles per second and
// info logging.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: eventqueue.DefaultCapacity,
		TickRate:        16667 * time.Microsecond,
		LogLevel:        "info",
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative capacities, a negative tick rate and unknown
// log levels.
func (c Config) Validate() error {
	if c.InitialCapacity < 0 {
		return fmt.Errorf("%w: initial_capacity %d: %w", ErrInvalidConfig, c.InitialCapacity, eventqueue.ErrInvalidCapacity)
	}
	for name, n := range c.Capacities {
		if n < 0 {
			return fmt.Errorf("%w: capacities[%s] %d: %w", ErrInvalidConfig, name, n, eventqueue.ErrInvalidCapacity)
		}
	}
	if c.TickRate < 0 {
		return fmt.Errorf("%w: tick_rate %s", ErrInvalidConfig, c.TickRate)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// CapacityFor returns the initial capacity for the named event type.
func (c Config) CapacityFor(name string) int {
	if n, ok := c.Capacities[name]; ok {
		return n
	}
	return c.InitialCapacity
}
