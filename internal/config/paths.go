package config

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/conn-castle/core-installer/internal/messages"
)

// Paths holds absolute locations derived from the config.
type Paths struct {
	ConfigDir  string
	Root       string
	ScratchDir string
	BinDir     string
	StateDir   string
	LockPath   string
	DBPath     string
}

// ResolvePaths makes every configured path absolute. Relative paths are taken
// from the directory of configPath and a leading ~ is expanded.
func (c *Config) ResolvePaths(configPath string) (Paths, error) {
	absConfig, err := filepath.Abs(configPath)
	if err != nil {
		return Paths{}, fmt.Errorf(messages.ConfigResolvePathFmt, configPath, err)
	}
	dir := filepath.Dir(absConfig)
	resolve := func(value string) (string, error) {
		if value == "" {
			return "", nil
		}
		expanded, err := homedir.Expand(value)
		if err != nil {
			return "", fmt.Errorf(messages.ConfigResolvePathFmt, value, err)
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(dir, expanded)
		}
		return filepath.Clean(expanded), nil
	}

	paths := Paths{ConfigDir: dir}
	if paths.Root, err = resolve(c.Installer.RootDir); err != nil {
		return Paths{}, err
	}
	if paths.ScratchDir, err = resolve(c.Installer.ScratchDir); err != nil {
		return Paths{}, err
	}
	if paths.BinDir, err = resolve(c.Installer.BinDir); err != nil {
		return Paths{}, err
	}
	if paths.StateDir, err = resolve(c.Installer.StateDir); err != nil {
		return Paths{}, err
	}
	paths.LockPath = filepath.Join(paths.StateDir, "coreinst.lock")
	paths.DBPath = filepath.Join(paths.StateDir, "coreinst.db")
	return paths, nil
}
