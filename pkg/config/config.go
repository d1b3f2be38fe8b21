// Package config loads weft.yaml, the optional project configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "weft.yaml"

// Executor kinds.
const (
	ExecutorLua     = "lua"
	ExecutorProcess = "process"
)

// Config is the root of weft.yaml.
type Config struct {
	Graphs   string         `yaml:"graphs"`
	Engine   EngineConfig   `yaml:"engine"`
	Executor ExecutorConfig `yaml:"executor"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Server   ServerConfig   `yaml:"server"`
}

// EngineConfig tunes the coordinator and the host.
type EngineConfig struct {
	StepFactor    int      `yaml:"step_factor"`
	HistorySize   int      `yaml:"history_size"`
	HistoryWindow int      `yaml:"history_window"`
	DeviceModules []string `yaml:"device_modules"`
}

// ExecutorConfig selects how node code runs.
type ExecutorConfig struct {
	Kind         string `yaml:"kind"`
	Interpreter  string `yaml:"interpreter"`
	Interpreters string `yaml:"interpreters"`
	WorkDir      string `yaml:"work_dir"`
}

// LogConfig configures diagnostics and run narration.
type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Narration string `yaml:"narration"`
}

// RedisConfig enables streaming narration to Redis when Address is set.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Stream   string `yaml:"stream"`
	Channel  string `yaml:"channel"`
	MaxLen   int64  `yaml:"max_len"`
}

// ServerConfig configures `weft serve`.
type ServerConfig struct {
	Port    int  `yaml:"port"`
	Metrics bool `yaml:"metrics"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Graphs: ".",
		Engine: EngineConfig{
			StepFactor:    10,
			HistorySize:   100,
			HistoryWindow: 10,
			DeviceModules: []string{"torch", "cupy", "tensor"},
		},
		Executor: ExecutorConfig{
			Kind:         ExecutorLua,
			Interpreters: "interpreters.yaml",
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			Narration: "text",
		},
		Redis: RedisConfig{
			Stream:  "weft:log",
			Channel: "weft:log:live",
			MaxLen:  10000,
		},
		Server: ServerConfig{
			Port:    8080,
			Metrics: true,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.StepFactor < 1 {
		errs = append(errs, fmt.Errorf("engine.step_factor must be positive, got %d", c.Engine.StepFactor))
	}
	if c.Engine.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("engine.history_size must be positive, got %d", c.Engine.HistorySize))
	}
	if c.Engine.HistoryWindow < 0 {
		errs = append(errs, fmt.Errorf("engine.history_window must not be negative, got %d", c.Engine.HistoryWindow))
	}
	switch c.Executor.Kind {
	case ExecutorLua, ExecutorProcess:
	default:
		errs = append(errs, fmt.Errorf("executor.kind must be %q or %q, got %q", ExecutorLua, ExecutorProcess, c.Executor.Kind))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch c.Log.Narration {
	case "text", "json", "none":
	default:
		errs = append(errs, fmt.Errorf("log.narration must be text, json or none, got %q", c.Log.Narration))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	return errors.Join(errs...)
}
