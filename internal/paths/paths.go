// Package paths resolves configuration and data directory locations for the
// coursedb CLI following the precedence chain flag > env > platform default.
//
// The two directories have very different weight. The config dir holds one
// config.yaml. The data dir is the live state every worker process shares:
// the default database, the per-course database files, the registry side
// file, and the structural lock file all live under it, so every process
// that should coordinate must resolve the same data dir.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDataDirName is the CWD-relative data dir used when no override is
// active, keeping a checkout-local deployment self-contained.
const DefaultDataDirName = ".coursedb-data"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "COURSEDB_CONFIG_DIR"
	EnvDataDir   = "COURSEDB_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/coursedb (fallback ~/.config/coursedb)
// macOS:   ~/Library/Application Support/coursedb
// Windows: %APPDATA%/coursedb
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "coursedb"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "coursedb"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "coursedb"), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/coursedb (fallback ~/.local/share/coursedb)
// macOS:   ~/Library/Application Support/coursedb
// Windows: %APPDATA%/coursedb
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "coursedb"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "coursedb"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "coursedb"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > COURSEDB_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml data_dir > COURSEDB_DATA_DIR env > $(CWD)/.coursedb-data.
//
// The CWD-relative default keeps a checkout-local data directory the primary
// mode when no override is active.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
