package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the enumgen.json configuration file
type Config struct {
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	Schema    string         `json:"schema"`
	Languages []string       `json:"languages"`
	Output    string         `json:"output"`
	Generate  GenerateConfig `json:"generate"`
	Dev       DevConfig      `json:"dev"`
}

// GenerateConfig contains code generation options
type GenerateConfig struct {
	// RuntimeImport is the import path of the host runtime package that
	// generated Go code references.
	RuntimeImport string `json:"runtimeImport"`

	// ImplicitDeref enables treating a single-field variant's only field
	// as the transparent access target without an explicit marker.
	ImplicitDeref *bool `json:"implicitDeref"`

	// Comments controls whether declaration docs are carried into the
	// generated sources.
	Comments *bool `json:"comments"`
}

// DevConfig contains watch-mode configuration
type DevConfig struct {
	Watch   []string `json:"watch"`
	Exclude []string `json:"exclude"`
}

// ImplicitDerefEnabled returns the configured value, defaulting to enabled.
func (g GenerateConfig) ImplicitDerefEnabled() bool {
	return g.ImplicitDeref == nil || *g.ImplicitDeref
}

// CommentsEnabled returns the configured value, defaulting to enabled.
func (g GenerateConfig) CommentsEnabled() bool {
	return g.Comments == nil || *g.Comments
}

// LoadConfig loads enumgen.json from the current directory or a parent directory
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads enumgen.json from a specific path
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	if config.Schema == "" {
		config.Schema = "./events.gql"
	}
	if len(config.Languages) == 0 {
		config.Languages = []string{"go"}
	}
	if config.Output == "" {
		config.Output = "./generated"
	}
	if len(config.Dev.Watch) == 0 {
		config.Dev.Watch = []string{"*.gql", "**/*.gql", "enumgen.json"}
	}
	if len(config.Dev.Exclude) == 0 {
		config.Dev.Exclude = []string{"generated/", ".git/"}
	}

	return &config, nil
}

// loadConfigFromDir searches for enumgen.json in the given directory and its parents
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, "enumgen.json")
		if _, err := os.Stat(configPath); err == nil {
			config, err := LoadConfigFromPath(configPath)
			if err != nil {
				return nil, "", err
			}
			return config, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", fmt.Errorf("no enumgen.json found in %s or any parent directory", startDir)
}
