package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// InterpreterConfig describes an external interpreter able to run node code.
// The code file path is appended after Args.
type InterpreterConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Extension   string            `yaml:"extension" json:"extension"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of interpreters.yaml.
type ConfigFile struct {
	Interpreters []InterpreterConfig `yaml:"interpreters" json:"interpreters"`
}

// LoadInterpreters reads a configuration file (YAML or JSON) and returns the interpreters by name.
// A missing file yields an empty map.
func LoadInterpreters(path string) (map[string]InterpreterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]InterpreterConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read interpreters config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out := make(map[string]InterpreterConfig)
	for _, it := range cfg.Interpreters {
		if it.Name == "" {
			continue
		}
		out[it.Name] = it
	}
	return out, nil
}
