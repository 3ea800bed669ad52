package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conn-castle/core-installer/internal/install"
	"github.com/conn-castle/core-installer/internal/messages"
)

// Validate ensures the config is complete and consistent.
func (c *Config) Validate(path string) error {
	in := c.Installer
	if strings.TrimSpace(in.PackageType) == "" {
		return fmt.Errorf(messages.ConfigPackageTypeRequiredFmt, path)
	}
	marker := filepath.ToSlash(filepath.Clean(filepath.FromSlash(in.MarkerDir)))
	if strings.TrimSpace(in.MarkerDir) == "" || filepath.IsAbs(in.MarkerDir) || marker == "." || marker == ".." || strings.HasPrefix(marker, "../") {
		return fmt.Errorf(messages.ConfigMarkerDirInvalidFmt, path, in.MarkerDir)
	}
	if in.DiffMaxLines < 0 {
		return fmt.Errorf(messages.ConfigDiffMaxLinesInvalidFmt, path, in.DiffMaxLines)
	}
	if err := c.IgnorePolicy().Validate(); err != nil {
		return fmt.Errorf(messages.ConfigIgnoreInvalidFmt, path, err)
	}
	if c.Package != nil {
		if err := c.Package.Validate(); err != nil {
			return fmt.Errorf(messages.ConfigPackageInvalidFmt, path, err)
		}
		if c.Package.Type != in.PackageType {
			return fmt.Errorf(messages.ConfigPackageTypeMismatchFmt, path, c.Package.Name, c.Package.Type, in.PackageType)
		}
	}
	return nil
}

// IgnorePolicy returns the [ignore] section as an installer policy.
func (c *Config) IgnorePolicy() install.IgnorePolicy {
	return install.IgnorePolicy{
		Files: append([]string(nil), c.Ignore.Files...),
		Dirs:  append([]string(nil), c.Ignore.Dirs...),
	}
}
