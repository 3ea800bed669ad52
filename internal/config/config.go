// Package config loads coreinst.toml and resolves the paths it names.
package config

import "github.com/conn-castle/core-installer/internal/pkginfo"

// Defaults applied to fields left empty in coreinst.toml.
const (
	DefaultFileName     = "coreinst.toml"
	DefaultRootDir      = "."
	DefaultPackageType  = "rubedo-core"
	DefaultMarkerDir    = "module/Rubedo"
	DefaultBinDir       = "vendor/bin"
	DefaultStateDir     = ".coreinst"
	DefaultGit          = "git"
	DefaultDiffMaxLines = 40
)

// Config is the full coreinst configuration.
type Config struct {
	Installer InstallerConfig  `toml:"installer"`
	Ignore    IgnoreConfig     `toml:"ignore"`
	Package   *pkginfo.Package `toml:"package,omitempty"`
}

// InstallerConfig holds the [installer] section.
type InstallerConfig struct {
	RootDir      string `toml:"root_dir"`
	PackageType  string `toml:"package_type"`
	MarkerDir    string `toml:"marker_dir"`
	ScratchDir   string `toml:"scratch_dir"`
	BinDir       string `toml:"bin_dir"`
	StateDir     string `toml:"state_dir"`
	Git          string `toml:"git"`
	FetchRemote  *bool  `toml:"fetch_remote"`
	DiffMaxLines int    `toml:"diff_max_lines"`
}

// IgnoreConfig holds the [ignore] section. An omitted list keeps its default.
type IgnoreConfig struct {
	Files []string `toml:"files"`
	Dirs  []string `toml:"dirs"`
}

// Default returns the configuration used when no coreinst.toml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// FetchRemoteEnabled reports whether the new reference is fetched before diffing.
func (c *Config) FetchRemoteEnabled() bool {
	return c.Installer.FetchRemote == nil || *c.Installer.FetchRemote
}

func (c *Config) applyDefaults() {
	in := &c.Installer
	if in.RootDir == "" {
		in.RootDir = DefaultRootDir
	}
	if in.PackageType == "" {
		in.PackageType = DefaultPackageType
	}
	if in.MarkerDir == "" {
		in.MarkerDir = DefaultMarkerDir
	}
	if in.BinDir == "" {
		in.BinDir = DefaultBinDir
	}
	if in.StateDir == "" {
		in.StateDir = DefaultStateDir
	}
	if in.Git == "" {
		in.Git = DefaultGit
	}
	if in.DiffMaxLines == 0 {
		in.DiffMaxLines = DefaultDiffMaxLines
	}
	if c.Ignore.Files == nil {
		c.Ignore.Files = []string{".gitignore"}
	}
	if c.Ignore.Dirs == nil {
		c.Ignore.Dirs = []string{".git", "extensions"}
	}
}
