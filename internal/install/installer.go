// Package install places the core distribution package onto its live root and
// upgrades it in place without discarding local additions.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/pkginfo"
)

// scratchPrefix names the per-operation staging directories.
const scratchPrefix = "_coreinst_tmproot_"

// Installer is the capability a package manager drives for one package type.
type Installer interface {
	Supports(packageType string) bool
	InstallPath(pkg pkginfo.Package) string
	IsInstalled(pkg pkginfo.Package) (bool, error)
	Install(ctx context.Context, pkg pkginfo.Package) error
	Update(ctx context.Context, initial pkginfo.Package, target pkginfo.Package) error
}

// Options configures a CoreInstaller. Collaborators are resolved once here.
type Options struct {
	// Root is the live root; defaults to the current directory.
	Root        string
	PackageType string
	// MarkerDir is a root-relative directory that only exists once the package was placed.
	MarkerDir string
	// ScratchParent holds scratch directories; empty uses the OS temp dir.
	ScratchParent string
	Ignore        IgnorePolicy
	DiffMaxLines  int

	Repository Repository
	Stager     Stager
	Binaries   Binaries
	Resolver   Resolver
	Journal    Journal
	System     System
	Logger     zerolog.Logger
	// Out receives user-facing notices; defaults to os.Stderr.
	Out io.Writer
	Now func() time.Time
}

// CoreInstaller installs and upgrades the core package at a fixed live root.
type CoreInstaller struct {
	root          string
	packageType   string
	markerDir     string
	scratchParent string
	ignore        IgnorePolicy
	diffMaxLines  int

	repo     Repository
	stager   Stager
	binaries Binaries
	resolver Resolver
	journal  Journal
	sys      System
	log      zerolog.Logger
	out      io.Writer
	now      func() time.Time
}

var _ Installer = (*CoreInstaller)(nil)

// New validates opts and returns a CoreInstaller.
func New(opts Options) (*CoreInstaller, error) {
	if strings.TrimSpace(opts.PackageType) == "" {
		return nil, fmt.Errorf(messages.InstallPackageTypeRequired)
	}
	if opts.System == nil {
		return nil, fmt.Errorf(messages.InstallSystemRequired)
	}
	if opts.Repository == nil {
		return nil, fmt.Errorf(messages.InstallRepositoryRequired)
	}
	if opts.Stager == nil {
		return nil, fmt.Errorf(messages.InstallStagerRequired)
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf(messages.InstallResolverRequired)
	}
	if err := opts.Ignore.Validate(); err != nil {
		return nil, err
	}
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &CoreInstaller{
		root:          filepath.Clean(root),
		packageType:   opts.PackageType,
		markerDir:     strings.Trim(filepath.ToSlash(opts.MarkerDir), "/"),
		scratchParent: opts.ScratchParent,
		ignore:        opts.Ignore,
		diffMaxLines:  normalizeDiffMaxLines(opts.DiffMaxLines),
		repo:          opts.Repository,
		stager:        opts.Stager,
		binaries:      opts.Binaries,
		resolver:      opts.Resolver,
		journal:       opts.Journal,
		sys:           opts.System,
		log:           opts.Logger,
		out:           out,
		now:           now,
	}, nil
}

// Supports reports whether packageType is handled by this installer.
func (c *CoreInstaller) Supports(packageType string) bool {
	return packageType == c.packageType
}

// InstallPath returns the live root. It has no side effects beyond a debug log line.
func (c *CoreInstaller) InstallPath(pkg pkginfo.Package) string {
	c.log.Debug().Msgf(messages.InstallPathDebugFmt, pkg.DisplayName(), c.root)
	return c.root
}

// IsInstalled requires both a repository entry and the marker directory inside the live root.
// The marker guards against a root that exists but was never populated by this package.
func (c *CoreInstaller) IsInstalled(pkg pkginfo.Package) (bool, error) {
	registered, err := c.repo.HasPackage(pkg)
	if err != nil {
		return false, err
	}
	if !registered {
		return false, nil
	}
	marker := filepath.Join(c.InstallPath(pkg), filepath.FromSlash(c.markerDir))
	info, err := c.sys.Stat(marker)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(messages.InstallFailedStatFmt, marker, err)
	}
	return info.IsDir(), nil
}

// InstalledRevision returns the recorded revision with the given package name, if any.
func (c *CoreInstaller) InstalledRevision(name string) (*pkginfo.Package, error) {
	packages, err := c.repo.Packages()
	if err != nil {
		return nil, fmt.Errorf(messages.InstallListPackagesFmt, err)
	}
	for _, pkg := range packages {
		if pkg.Name == name {
			found := pkg
			return &found, nil
		}
	}
	return nil, nil
}

// rootIsEmpty reports whether root is missing or an empty directory.
func (c *CoreInstaller) rootIsEmpty(root string) (bool, error) {
	info, err := c.sys.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf(messages.InstallFailedStatFmt, root, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf(messages.InstallRootNotDirFmt, root)
	}
	entries, err := c.sys.ReadDir(root)
	if err != nil {
		return false, fmt.Errorf(messages.InstallFailedReadFmt, root, err)
	}
	return len(entries) == 0, nil
}

// newScratchDir creates a uniquely named staging directory.
func (c *CoreInstaller) newScratchDir() (string, error) {
	dir, err := c.sys.MkdirTemp(c.scratchParent, scratchPrefix)
	if err != nil {
		return "", fmt.Errorf(messages.InstallCreateScratchFmt, err)
	}
	c.log.Info().Msgf(messages.InstallScratchDirFmt, dir)
	return dir, nil
}

// removeScratch removes a scratch directory that was never merged.
// Failure only leaks a temp directory, so it is reported and not returned.
func (c *CoreInstaller) removeScratch(dir string) {
	if dir == "" {
		return
	}
	if err := c.sys.RemoveAll(dir); err != nil {
		c.log.Warn().Err(err).Str("scratch", dir).Msg("failed to remove scratch directory")
		_, _ = fmt.Fprintf(c.out, messages.InstallScratchLeakFmt, dir, err)
	}
}
