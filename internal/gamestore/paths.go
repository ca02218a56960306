// Package gamestore persists completed games and lifetime player stats in
// BadgerDB. It sits outside the engine's turn pipeline entirely: the engine
// never touches disk, it only emits a terminal GameEnded event that a caller
// may translate into a GameRecord for Store.RecordGame.
package gamestore

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "simulgo"

// DataDir returns the platform-specific data directory for the application.
//   - macOS: ~/Library/Application Support/simulgo/
//   - Linux and others: $XDG_DATA_HOME/simulgo/, or ~/.local/share/simulgo/
//     when XDG_DATA_HOME is unset
//   - Windows: %APPDATA%/simulgo/
func DataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DatabaseDir returns the directory BadgerDB should open against.
func DatabaseDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}
