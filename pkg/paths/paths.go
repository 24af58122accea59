package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dupes/pkg/errors"
)

// Environment variable names
const (
	// EnvDupesConfigDir overrides the XDG config directory for dupes
	EnvDupesConfigDir = "DUPES_CONFIG_DIR"

	// EnvDupesStateDir overrides the XDG state directory for dupes
	EnvDupesStateDir = "DUPES_STATE_DIR"
)

const (
	// AppDirName is the directory name used under the XDG base directories
	AppDirName = "dupes"

	// ConfigFileName is the user-level configuration file
	ConfigFileName = "config.toml"

	// RootConfigFile is the per-tree configuration file, read from the scan root
	RootConfigFile = ".dupes.toml"

	// LogFileName is the name of the log file
	LogFileName = "dupes.log"
)

// ResolveRoot turns the user-supplied root into a cleaned absolute path.
// An empty root means the current working directory.
func ResolveRoot(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrConfigValid, "failed to get current directory")
		}
		return cwd, nil
	}

	abs, err := filepath.Abs(expandHome(root))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigValid, "failed to get absolute path for %s", root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigValid, "scan root %s is not accessible", abs).WithPath(abs)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrConfigValid, "scan root %s is not a directory", abs).WithPath(abs)
	}
	return abs, nil
}

// ConfigDir returns the directory holding the user configuration file
func ConfigDir() string {
	if dir := os.Getenv(EnvDupesConfigDir); dir != "" {
		return expandHome(dir)
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// ConfigFilePath returns the path of the user configuration file
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// StateDir returns the directory used for the log file
func StateDir() string {
	if dir := os.Getenv(EnvDupesStateDir); dir != "" {
		return expandHome(dir)
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// LogFilePath returns the path to the log file
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFileName)
}

// Executable returns the resolved absolute path of the running program.
// Symlinks are resolved so a link pointing at the binary compares equal.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Clean(exe), nil
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
