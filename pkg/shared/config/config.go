package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config holds the global configuration for pybridge.
type Config struct {
	Logger   Logger            `yaml:"logger"`
	Pybridge Pybridge          `yaml:"pybridge"`
	Linters  map[string]Linter `yaml:"linters"`
	Refactor Refactor          `yaml:"refactor"`
}

// Logger holds logging configuration.
type Logger struct {
	Level string `yaml:"level"`
}

// Pybridge holds general application folders.
type Pybridge struct {
	HomeFolder string `yaml:"home_folder"`
	TempFolder string `yaml:"temp_folder"`
}

// Linter holds the configuration of a single command-line linter.
type Linter struct {
	Enabled      *bool             `yaml:"enabled"`       // Whether the linter runs at all; defaults to true
	Path         string            `yaml:"path"`          // Executable path; defaults to the linter name
	Args         []string          `yaml:"args"`          // Extra arguments appended before the target
	Pattern      string            `yaml:"pattern"`       // Output line pattern override with named capture groups
	ColumnOffset int               `yaml:"column_offset"` // Subtracted from reported columns
	MaxMessages  int               `yaml:"max_messages"`  // Cap on parsed messages per run
	Severities   map[string]string `yaml:"severities"`    // Maps tool severity categories to error/warning/information/hint
}

// Refactor holds the configuration of the Python refactoring helper.
type Refactor struct {
	PythonPath string        `yaml:"python_path"` // Python interpreter used to run the helper
	ScriptPath string        `yaml:"script_path"` // Path to the helper script
	IndentSize int           `yaml:"indent_size"` // Indent width passed to the helper
	Timeout    time.Duration `yaml:"timeout"`     // Bound on startup and command waits
}

// UnmarshalYAML decodes the refactor section, accepting the timeout as a
// duration string like "30s".
func (r *Refactor) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		PythonPath string `yaml:"python_path"`
		ScriptPath string `yaml:"script_path"`
		IndentSize int    `yaml:"indent_size"`
		Timeout    string `yaml:"timeout"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	r.PythonPath = raw.PythonPath
	r.ScriptPath = raw.ScriptPath
	r.IndentSize = raw.IndentSize
	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid refactor timeout %q: %w", raw.Timeout, err)
		}
		r.Timeout = timeout
	}
	return nil
}

// LoadConfig reads the configuration file at the given path.
// A missing file is not an error; the defaults are applied during validation.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadYAML decodes a YAML file into the provided structure.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("failed to decode %q: %w", configPath, err)
	}

	return nil
}

// ValidateConfigPath checks that the given path points at a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}
