package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/core-installer/internal/install"
	"github.com/conn-castle/core-installer/internal/pkginfo"
)

const fullConfig = `
[installer]
root_dir = "public"
package_type = "rubedo-core"
marker_dir = "module/Rubedo"
scratch_dir = "/var/tmp"
bin_dir = "bin"
state_dir = "~/.coreinst-state"
git = "/usr/local/bin/git"
fetch_remote = false
diff_max_lines = 80

[ignore]
files = [".gitignore", ".gitattributes"]
dirs = [".git"]

[package]
name = "webtales/rubedo"
pretty_name = "Rubedo"
version = "3.4.0"
type = "rubedo-core"
binaries = ["bin/rubedo"]

[package.source]
type = "git"
url = "https://github.com/WebTales/rubedo.git"
reference = "3f2a9c"
`

func TestParseConfigFull(t *testing.T) {
	cfg, err := ParseConfig([]byte(fullConfig), "coreinst.toml")
	require.NoError(t, err)

	assert.Equal(t, "public", cfg.Installer.RootDir)
	assert.Equal(t, "/usr/local/bin/git", cfg.Installer.Git)
	assert.Equal(t, 80, cfg.Installer.DiffMaxLines)
	assert.False(t, cfg.FetchRemoteEnabled())
	assert.Equal(t, install.IgnorePolicy{
		Files: []string{".gitignore", ".gitattributes"},
		Dirs:  []string{".git"},
	}, cfg.IgnorePolicy())
	require.NotNil(t, cfg.Package)
	assert.Equal(t, pkginfo.Package{
		Name:       "webtales/rubedo",
		PrettyName: "Rubedo",
		Version:    "3.4.0",
		Type:       "rubedo-core",
		Source: pkginfo.Source{
			Type:      pkginfo.SourceGit,
			URL:       "https://github.com/WebTales/rubedo.git",
			Reference: "3f2a9c",
		},
		Binaries: []string{"bin/rubedo"},
	}, *cfg.Package)
}

func TestParseConfigAppliesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("[installer]\nroot_dir = \"web\"\n"), "coreinst.toml")
	require.NoError(t, err)
	assert.Equal(t, "web", cfg.Installer.RootDir)
	assert.Equal(t, DefaultPackageType, cfg.Installer.PackageType)
	assert.Equal(t, DefaultMarkerDir, cfg.Installer.MarkerDir)
	assert.Equal(t, DefaultBinDir, cfg.Installer.BinDir)
	assert.Equal(t, DefaultStateDir, cfg.Installer.StateDir)
	assert.Equal(t, DefaultGit, cfg.Installer.Git)
	assert.Equal(t, DefaultDiffMaxLines, cfg.Installer.DiffMaxLines)
	assert.True(t, cfg.FetchRemoteEnabled())
	assert.Equal(t, install.DefaultIgnorePolicy(), cfg.IgnorePolicy())
	assert.Nil(t, cfg.Package)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name           string
		data           string
		wantValidation bool
		wantErr        string
	}{
		{name: "syntax", data: "[installer\n", wantErr: "invalid config"},
		{name: "unknown key", data: "[installer]\nroot = \".\"\n", wantValidation: true, wantErr: "unrecognized"},
		{name: "marker escapes", data: "[installer]\nmarker_dir = \"../x\"\n", wantValidation: true, wantErr: "marker_dir"},
		{name: "marker absolute", data: "[installer]\nmarker_dir = \"/x\"\n", wantValidation: true, wantErr: "marker_dir"},
		{name: "negative diff lines", data: "[installer]\ndiff_max_lines = -1\n", wantValidation: true, wantErr: "diff_max_lines"},
		{name: "bad ignore name", data: "[ignore]\ndirs = [\"a/b\"]\n", wantValidation: true, wantErr: "a/b"},
		{
			name:           "invalid package",
			data:           "[package]\nname = \"x\"\ntype = \"rubedo-core\"\n[package.source]\ntype = \"git\"\nurl = \"u\"\n",
			wantValidation: true,
			wantErr:        "version is required",
		},
		{
			name:           "package type mismatch",
			data:           "[package]\nname = \"x\"\nversion = \"1\"\ntype = \"library\"\n[package.source]\ntype = \"git\"\nurl = \"u\"\n",
			wantValidation: true,
			wantErr:        "library",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), "coreinst.toml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantValidation, errors.Is(err, ErrConfigValidation))
		})
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "coreinst.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coreinst.toml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.Installer.RootDir)

	_, err = LoadConfig(t.TempDir())
	require.Error(t, err)
}

func TestResolvePaths(t *testing.T) {
	cfg, err := ParseConfig([]byte(fullConfig), "coreinst.toml")
	require.NoError(t, err)
	dir := t.TempDir()
	home, err := homedir.Dir()
	require.NoError(t, err)

	paths, err := cfg.ResolvePaths(filepath.Join(dir, "coreinst.toml"))
	require.NoError(t, err)
	assert.Equal(t, dir, paths.ConfigDir)
	assert.Equal(t, filepath.Join(dir, "public"), paths.Root)
	assert.Equal(t, "/var/tmp", paths.ScratchDir)
	assert.Equal(t, filepath.Join(dir, "bin"), paths.BinDir)
	assert.Equal(t, filepath.Join(home, ".coreinst-state"), paths.StateDir)
	assert.Equal(t, filepath.Join(home, ".coreinst-state", "coreinst.lock"), paths.LockPath)
	assert.Equal(t, filepath.Join(home, ".coreinst-state", "coreinst.db"), paths.DBPath)
}

func TestResolvePathsDefaults(t *testing.T) {
	dir := t.TempDir()
	paths, err := Default().ResolvePaths(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, dir, paths.Root)
	assert.Equal(t, "", paths.ScratchDir)
	assert.Equal(t, filepath.Join(dir, ".coreinst", "coreinst.db"), paths.DBPath)
}
