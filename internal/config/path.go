// Package config resolves climbr's settings and holds the vision credential.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath is where settings and saved wall sets live unless
// database.path says otherwise. XDG_DATA_HOME is honoured when set.
func DefaultDatabasePath() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "climbr", "climbr.db")
	}
	return ExpandPath("~/.local/share/climbr/climbr.db")
}

// DefaultConfigDir is searched for config.yaml.
func DefaultConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "climbr")
	}
	return ExpandPath("~/.config/climbr")
}
