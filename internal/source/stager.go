// Package source performs plain installs: it places the files of a package
// revision into a directory, either by cloning a git repository or by copying
// a local checkout.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"

	"github.com/conn-castle/core-installer/internal/fsutil"
	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/pkginfo"
	"github.com/conn-castle/core-installer/internal/process"
)

// DefaultGit is the git executable used when Stager.Git is empty.
const DefaultGit = "git"

// Stager dispatches a plain install on the package source type.
type Stager struct {
	Runner process.Runner
	Git    string
	Logger zerolog.Logger
}

// Stage places the sources of pkg into dir. dir must be missing or empty.
func (s Stager) Stage(ctx context.Context, pkg pkginfo.Package, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New(messages.SourceDirRequired)
	}
	switch pkg.Source.Type {
	case pkginfo.SourceGit:
		return s.stageGit(ctx, pkg, dir)
	case pkginfo.SourcePath:
		return s.stagePath(pkg, dir)
	default:
		return fmt.Errorf(messages.SourceTypeUnsupportedFmt, pkg.Source.Type, pkg.Name)
	}
}

func (s Stager) stageGit(ctx context.Context, pkg pkginfo.Package, dir string) error {
	if s.Runner == nil {
		return errors.New(messages.SourceRunnerRequired)
	}
	git := s.Git
	if git == "" {
		git = DefaultGit
	}
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf(messages.SourceCreateDirFmt, parent, err)
	}
	s.Logger.Debug().Str("url", pkg.Source.URL).Str("dir", dir).Msg("cloning package source")
	if _, err := s.Runner.Run(ctx, parent, git, "clone", "--quiet", pkg.Source.URL, dir); err != nil {
		return fmt.Errorf(messages.SourceCloneFailedFmt, pkg.Source.URL, err)
	}
	ref := pkg.SourceReference()
	if ref == "" {
		return nil
	}
	s.Logger.Debug().Str("reference", ref).Msg("checking out package reference")
	if _, err := s.Runner.Run(ctx, dir, git, "checkout", "--quiet", "--force", ref); err != nil {
		return fmt.Errorf(messages.SourceCheckoutFailedFmt, ref, err)
	}
	return nil
}

func (s Stager) stagePath(pkg pkginfo.Package, dir string) error {
	src, err := ResolvePath(pkg.Source.URL)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf(messages.SourcePathStatFmt, src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf(messages.SourcePathNotDirFmt, src)
	}
	s.Logger.Debug().Str("src", src).Str("dir", dir).Msg("copying package source")
	if err := fsutil.CopyTree(fsutil.OS{}, src, dir); err != nil {
		return fmt.Errorf(messages.SourceCopyFailedFmt, src, dir, err)
	}
	return nil
}

// ResolvePath expands a leading ~ and makes a path-source URL absolute.
// A file:// prefix is accepted.
func ResolvePath(url string) (string, error) {
	path := strings.TrimPrefix(strings.TrimSpace(url), "file://")
	if path == "" {
		return "", fmt.Errorf(messages.SourcePathInvalidFmt, url)
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf(messages.SourcePathExpandFmt, url, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf(messages.SourcePathExpandFmt, url, err)
	}
	return abs, nil
}
