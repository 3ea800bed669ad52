// Package binstub writes executable proxies for the binaries a package declares.
package binstub

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/conn-castle/core-installer/internal/fsutil"
	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/pkginfo"
)

// stubMarker identifies files written by this package; Remove leaves other files alone.
const stubMarker = "# coreinst binary stub"

// System is the minimal interface needed for stub operations.
type System interface {
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	MkdirAll(path string, perm os.FileMode) error
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error
	Remove(name string) error
}

// RealSystem implements System using actual system calls.
type RealSystem struct{}

// Stat returns a FileInfo describing the named file.
func (RealSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads the named file.
func (RealSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// MkdirAll creates a directory and all parent directories.
func (RealSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// WriteFileAtomic writes data to path atomically.
func (RealSystem) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return fsutil.WriteFileAtomic(path, data, perm)
}

// Remove removes the named file.
func (RealSystem) Remove(name string) error {
	return os.Remove(name)
}

// Installer writes one stub per declared binary into BinDir.
type Installer struct {
	BinDir string
	System System
	Logger zerolog.Logger
}

// Install writes a stub for every entry of pkg.Binaries pointing into root.
// Each binary must exist below root.
func (i Installer) Install(pkg pkginfo.Package, root string) error {
	if len(pkg.Binaries) == 0 {
		return nil
	}
	if err := i.validate(); err != nil {
		return err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf(messages.BinstubResolveRootFmt, root, err)
	}
	if err := i.System.MkdirAll(i.BinDir, 0o755); err != nil {
		return fmt.Errorf(messages.BinstubCreateDirFmt, i.BinDir, err)
	}
	for _, entry := range pkg.Binaries {
		target := filepath.Join(absRoot, filepath.FromSlash(entry))
		if _, err := i.System.Stat(target); err != nil {
			return fmt.Errorf(messages.BinstubTargetMissingFmt, entry, pkg.Name, err)
		}
		stub := StubPath(i.BinDir, entry)
		if err := i.System.WriteFileAtomic(stub, []byte(Script(pkg.Name, target)), 0o755); err != nil {
			return fmt.Errorf(messages.BinstubWriteFmt, stub, err)
		}
		i.Logger.Debug().Str("stub", stub).Str("target", target).Msg("installed binary stub")
	}
	return nil
}

// Remove deletes the stubs of pkg. Missing stubs and files not written by
// Install are skipped.
func (i Installer) Remove(pkg pkginfo.Package, _ string) error {
	if len(pkg.Binaries) == 0 {
		return nil
	}
	if err := i.validate(); err != nil {
		return err
	}
	for _, entry := range pkg.Binaries {
		stub := StubPath(i.BinDir, entry)
		data, err := i.System.ReadFile(stub)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf(messages.BinstubReadFmt, stub, err)
		}
		if !strings.Contains(string(data), stubMarker) {
			i.Logger.Warn().Str("path", stub).Msg("not removing binary that was not written by coreinst")
			continue
		}
		if err := i.System.Remove(stub); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.BinstubRemoveFmt, stub, err)
		}
	}
	return nil
}

func (i Installer) validate() error {
	if strings.TrimSpace(i.BinDir) == "" {
		return errors.New(messages.BinstubDirRequired)
	}
	if i.System == nil {
		return errors.New(messages.BinstubSystemRequired)
	}
	return nil
}

// StubPath returns where the stub for a root-relative binary entry lives.
func StubPath(binDir string, entry string) string {
	return filepath.Join(binDir, path.Base(filepath.ToSlash(entry)))
}

// Script renders the /bin/sh proxy for target.
func Script(pkgName string, target string) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString(stubMarker + " for " + pkgName + "\n")
	b.WriteString("exec " + shellQuote(target) + " \"$@\"\n")
	return b.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
