package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied while validating the configuration.
const (
	DefaultPythonPath     = "python3"
	DefaultIndentSize     = 4
	DefaultTimeout        = 30 * time.Second
	DefaultMaxMessages    = 100
	defaultHomeFolderName = ".pybridge"
)

// ValidateConfig checks if the global configuration has valid values and
// fills in the defaults for anything left unset.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := validatePybridgeConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: pybridge directive is invalid: %w", err)
	}
	if err := validateLintersConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: linters directive is invalid: %w", err)
	}
	if err := validateRefactorConfig(&cfg.Refactor); err != nil {
		return fmt.Errorf("YAML global config: refactor directive is invalid: %w", err)
	}
	return nil
}

// validatePybridgeConfig resolves the application folders, honouring env overrides.
func validatePybridgeConfig(cfg *Config) error {
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("failed to update home folder: %w", err)
	}
	if cfg.Pybridge.TempFolder == "" {
		cfg.Pybridge.TempFolder = filepath.Join(cfg.Pybridge.HomeFolder, "tmp")
	}
	return nil
}

// validateLintersConfig checks per-linter settings and applies defaults.
func validateLintersConfig(cfg *Config) error {
	for name, linter := range cfg.Linters {
		if name == "" {
			return fmt.Errorf("linter with an empty name")
		}
		if linter.ColumnOffset < 0 {
			return fmt.Errorf("linter %q: column_offset must not be negative: %d", name, linter.ColumnOffset)
		}
		if linter.MaxMessages < 0 {
			return fmt.Errorf("linter %q: max_messages must not be negative: %d", name, linter.MaxMessages)
		}
		if linter.MaxMessages == 0 {
			linter.MaxMessages = DefaultMaxMessages
		}
		if linter.Path == "" {
			linter.Path = name
		}
		cfg.Linters[name] = linter
	}
	return nil
}

// validateRefactorConfig checks the refactor helper settings and applies defaults.
func validateRefactorConfig(refactor *Refactor) error {
	if refactor == nil {
		return fmt.Errorf("refactor configuration is nil")
	}
	if refactor.PythonPath == "" {
		refactor.PythonPath = DefaultPythonPath
	}
	if refactor.IndentSize < 0 {
		return fmt.Errorf("indent_size must not be negative: %d", refactor.IndentSize)
	}
	if refactor.IndentSize == 0 {
		refactor.IndentSize = DefaultIndentSize
	}
	if refactor.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", refactor.Timeout)
	}
	if refactor.Timeout == 0 {
		refactor.Timeout = DefaultTimeout
	}
	return nil
}

// updateHome resolves the home folder from config, environment or the user home.
func updateHome(cfg *Config) error {
	if cfg.Pybridge.HomeFolder != "" {
		return nil
	}
	if envHome := os.Getenv("PYBRIDGE_HOME"); envHome != "" {
		cfg.Pybridge.HomeFolder = envHome
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("unable to get user home folder: %w", err)
	}
	cfg.Pybridge.HomeFolder = filepath.Join(home, defaultHomeFolderName)
	return nil
}

// GetPybridgeHome returns the resolved application home folder.
func GetPybridgeHome(cfg *Config) string {
	return cfg.Pybridge.HomeFolder
}

// GetPybridgeTemp returns the resolved temp folder.
func GetPybridgeTemp(cfg *Config) string {
	return cfg.Pybridge.TempFolder
}

// IsLinterEnabled reports whether the named linter should run.
// Linters are enabled unless explicitly switched off.
func IsLinterEnabled(cfg *Config, name string) bool {
	linter, ok := cfg.Linters[name]
	if !ok {
		return false
	}
	if linter.Enabled == nil {
		return true
	}
	return *linter.Enabled
}

// LinterSettings returns the validated settings for the named linter.
func LinterSettings(cfg *Config, name string) (Linter, bool) {
	linter, ok := cfg.Linters[name]
	return linter, ok
}
