package logreader

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// LogPathEnv overrides the platform default Player.log location.
const LogPathEnv = "MTGA_LOG_PATH"

// DefaultLogPath returns the Player.log path for the current platform.
// MTGA_LOG_PATH takes precedence when set.
func DefaultLogPath() (string, error) {
	if p := os.Getenv(LogPathEnv); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}

	return platformLogPath(runtime.GOOS, home)
}

func platformLogPath(goos, home string) (string, error) {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "com.wizards.mtga", "Logs", "Logs", "Player.log"), nil
	case "windows":
		return filepath.Join(home, "AppData", "LocalLow", "Wizards Of The Coast", "MTGA", "Player.log"), nil
	case "linux":
		// Steam Proton prefix.
		return filepath.Join(home, ".local", "share", "Steam", "steamapps", "compatdata", "2141910",
			"pfx", "drive_c", "users", "steamuser", "AppData", "LocalLow", "Wizards Of The Coast", "MTGA", "Player.log"), nil
	default:
		return "", fmt.Errorf("unsupported platform: %s", goos)
	}
}

// LogExists checks if the log file exists at the given path.
func LogExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("path is a directory, not a file")
	}
	return true, nil
}
