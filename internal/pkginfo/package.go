// Package pkginfo describes package revisions handled by the installer.
package pkginfo

import (
	"fmt"
	"path"
	"strings"

	"github.com/conn-castle/core-installer/internal/messages"
)

// Source type identifiers.
const (
	SourceGit  = "git"
	SourcePath = "path"
)

// Source locates the sources of one package revision.
type Source struct {
	Type      string `toml:"type" yaml:"type" json:"type"`
	URL       string `toml:"url" yaml:"url" json:"url"`
	Reference string `toml:"reference,omitempty" yaml:"reference,omitempty" json:"reference,omitempty"`
}

// Package is one immutable revision of a distributed package.
type Package struct {
	Name       string   `toml:"name" yaml:"name" json:"name"`
	PrettyName string   `toml:"pretty_name,omitempty" yaml:"pretty_name,omitempty" json:"pretty_name,omitempty"`
	Version    string   `toml:"version" yaml:"version" json:"version"`
	Type       string   `toml:"type" yaml:"type" json:"type"`
	Source     Source   `toml:"source" yaml:"source" json:"source"`
	Binaries   []string `toml:"binaries,omitempty" yaml:"binaries,omitempty" json:"binaries,omitempty"`
}

// DisplayName returns the pretty name, falling back to the canonical name.
func (p Package) DisplayName() string {
	if strings.TrimSpace(p.PrettyName) != "" {
		return p.PrettyName
	}
	return p.Name
}

// SourceReference returns the source reference that identifies this revision in version control.
func (p Package) SourceReference() string {
	return p.Source.Reference
}

// SameRevision reports whether p and other identify the same revision of the same package.
func (p Package) SameRevision(other Package) bool {
	return p.Name == other.Name && p.Version == other.Version && p.Source.Reference == other.Source.Reference
}

func (p Package) String() string {
	if p.Source.Reference == "" {
		return fmt.Sprintf("%s (%s)", p.DisplayName(), p.Version)
	}
	return fmt.Sprintf("%s (%s, %s)", p.DisplayName(), p.Version, ShortReference(p.Source.Reference))
}

// ShortReference abbreviates long commit hashes for display.
func ShortReference(ref string) string {
	if len(ref) > 12 {
		return ref[:12]
	}
	return ref
}

// Validate checks that the revision can be staged.
func (p Package) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf(messages.PackageNameRequired)
	}
	if strings.TrimSpace(p.Version) == "" {
		return fmt.Errorf(messages.PackageVersionRequiredFmt, p.Name)
	}
	if strings.TrimSpace(p.Type) == "" {
		return fmt.Errorf(messages.PackageTypeRequiredFmt, p.Name)
	}
	switch p.Source.Type {
	case SourceGit, SourcePath:
	default:
		return fmt.Errorf(messages.PackageSourceTypeInvalidFmt, p.Name, p.Source.Type, SourceGit, SourcePath)
	}
	if strings.TrimSpace(p.Source.URL) == "" {
		return fmt.Errorf(messages.PackageSourceURLRequiredFmt, p.Name)
	}
	for _, bin := range p.Binaries {
		clean := path.Clean(bin)
		if bin == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf(messages.PackageBinaryInvalidFmt, p.Name, bin)
		}
	}
	return nil
}
