package arrayfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/arraykit/filearray"
)

// Config is the YAML form of the knobs a store is opened with.
//
//	signature: "ARR1"
//	policy: wait-fail
//	retry_count: 20
//	retry_delay: 250ms
//	flush_mode: full
type Config struct {
	Signature  string        `yaml:"signature"`
	Policy     string        `yaml:"policy,omitempty" jsonschema:"enum=fail,enum=ignore,enum=delete,enum=wait-fail,enum=wait-delete"`
	Version    uint32        `yaml:"version,omitempty"`
	FlushMode  string        `yaml:"flush_mode,omitempty" jsonschema:"enum=auto,enum=data-only,enum=full"`
	DeferFlush bool          `yaml:"defer_flush,omitempty"`
	ChunkSize  int           `yaml:"chunk_size,omitempty" jsonschema:"minimum=0"`
	RetryCount int           `yaml:"retry_count,omitempty" jsonschema:"minimum=0"`
	RetryDelay time.Duration `yaml:"retry_delay,omitempty"`
}

// DefaultConfig returns a config with an empty signature and default knobs.
func DefaultConfig() *Config {
	return &Config{Policy: filearray.FailIfOpen.String()}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates a YAML config document.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that names and numbers in the config are usable.
func (c *Config) Validate() error {
	if _, err := ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := filearray.ParseFlushMode(c.FlushMode); err != nil {
		return err
	}
	if c.ChunkSize < 0 {
		return errors.New("chunk_size must not be negative")
	}
	if c.RetryCount < 0 || c.RetryDelay < 0 {
		return errors.New("retry_count and retry_delay must not be negative")
	}
	return nil
}

// ParsePolicy maps a policy name to a filearray.OpenPolicy.
func ParsePolicy(name string) (filearray.OpenPolicy, error) {
	return filearray.ParseOpenPolicy(name)
}

// OpenPolicy returns the configured open policy.
func (c *Config) OpenPolicy() filearray.OpenPolicy {
	p, _ := ParsePolicy(c.Policy)
	return p
}

// Options converts the config into store options logging to logger.
func (c *Config) Options(logger *slog.Logger) *filearray.Options {
	mode, _ := filearray.ParseFlushMode(c.FlushMode)
	return &filearray.Options{
		Logger:     logger,
		DeferFlush: c.DeferFlush,
		FlushMode:  mode,
		ChunkSize:  c.ChunkSize,
		RetryCount: c.RetryCount,
		RetryDelay: c.RetryDelay,
		Version:    c.Version,
	}
}
