// config.go loads resilience settings from a YAML file. Environment
// variables in the file are expanded before parsing, and defaults are
// filled in so the resulting values are fully populated at construction.

package resil

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the on-disk YAML layout.
type FileConfig struct {
	Logger  LoggerFileConfig  `yaml:"logger"`
	Retry   RetryFileConfig   `yaml:"retry"`
	Breaker BreakerFileConfig `yaml:"breaker"`
}

type LoggerFileConfig struct {
	MinLevel          string `yaml:"min_level"`
	Console           *bool  `yaml:"console"`
	File              bool   `yaml:"file"`
	FilePath          string `yaml:"file_path"`
	IncludeStackTrace *bool  `yaml:"include_stack_trace"`
	Colorize          *bool  `yaml:"colorize"`
}

type RetryFileConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	Jitter            *bool   `yaml:"jitter"`
}

type BreakerFileConfig struct {
	Threshold int `yaml:"threshold"`
	TimeoutMs int `yaml:"timeout_ms"`
}

// LoadConfig reads a YAML config file, expanding ${VAR} references from the
// environment.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg FileConfig
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// LoggerConfig converts the file section into a fully populated Config.
func (c *FileConfig) LoggerConfig() (Config, error) {
	cfg := DefaultConfig()
	if c.Logger.MinLevel != "" {
		level, err := ParseLevel(c.Logger.MinLevel)
		if err != nil {
			return cfg, err
		}
		cfg.MinLevel = level
	}
	if c.Logger.Console != nil {
		cfg.Console = *c.Logger.Console
	}
	cfg.File = c.Logger.File
	if c.Logger.FilePath != "" {
		cfg.FilePath = c.Logger.FilePath
	}
	if c.Logger.IncludeStackTrace != nil {
		cfg.IncludeStackTrace = *c.Logger.IncludeStackTrace
	}
	if c.Logger.Colorize != nil {
		cfg.Colorize = *c.Logger.Colorize
	}
	return cfg, nil
}

// RetryOptions converts the file section into Retrier options.
func (c *FileConfig) RetryOptions() []RetryOption {
	var opts []RetryOption
	if c.Retry.MaxAttempts > 0 {
		opts = append(opts, WithMaxAttempts(c.Retry.MaxAttempts))
	}
	if c.Retry.InitialDelayMs > 0 {
		opts = append(opts, WithInitialDelay(time.Duration(c.Retry.InitialDelayMs)*time.Millisecond))
	}
	if c.Retry.MaxDelayMs > 0 {
		opts = append(opts, WithMaxDelay(time.Duration(c.Retry.MaxDelayMs)*time.Millisecond))
	}
	if c.Retry.BackoffMultiplier > 0 {
		opts = append(opts, WithBackoffMultiplier(c.Retry.BackoffMultiplier))
	}
	if c.Retry.Jitter != nil {
		opts = append(opts, WithJitter(*c.Retry.Jitter))
	}
	return opts
}

// BreakerOptions converts the file section into CircuitBreaker options.
func (c *FileConfig) BreakerOptions() []BreakerOption {
	var opts []BreakerOption
	if c.Breaker.Threshold > 0 {
		opts = append(opts, WithThreshold(c.Breaker.Threshold))
	}
	if c.Breaker.TimeoutMs > 0 {
		opts = append(opts, WithBreakerTimeout(time.Duration(c.Breaker.TimeoutMs)*time.Millisecond))
	}
	return opts
}
