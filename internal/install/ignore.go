package install

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conn-castle/core-installer/internal/messages"
)

// IgnorePolicy lists base names that are never merged into the live root.
type IgnorePolicy struct {
	Files []string
	Dirs  []string
}

// DefaultIgnorePolicy excludes version-control metadata and the local extensions directory.
func DefaultIgnorePolicy() IgnorePolicy {
	return IgnorePolicy{
		Files: []string{".gitignore"},
		Dirs:  []string{".git", "extensions"},
	}
}

// Validate rejects entries that are not bare base names.
func (p IgnorePolicy) Validate() error {
	for _, names := range [][]string{p.Files, p.Dirs} {
		for _, name := range names {
			if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
				return fmt.Errorf(messages.InstallIgnoreNameInvalidFmt, name)
			}
		}
	}
	return nil
}

// Match reports whether an entry named name is ignored. Both lists apply to
// every entry kind: a worktree's ".git" file is as ignored as a ".git" directory.
func (p IgnorePolicy) Match(name string) bool {
	return containsName(p.Files, name) || containsName(p.Dirs, name)
}

func containsName(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}

// cleanIgnored removes every ignored entry below root, at any depth.
// Matching directories are removed recursively. It returns the removed
// slash-separated relative paths, sorted.
func cleanIgnored(sys System, root string, policy IgnorePolicy) ([]string, error) {
	matches, err := findIgnored(sys, root, policy)
	if err != nil {
		return nil, err
	}
	for _, rel := range matches {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := sys.RemoveAll(path); err != nil {
			return nil, fmt.Errorf(messages.InstallRemoveIgnoredFmt, path, err)
		}
	}
	return matches, nil
}

// findIgnored lists ignored entries below root without touching them.
func findIgnored(sys System, root string, policy IgnorePolicy) ([]string, error) {
	var matches []string
	err := sys.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !policy.Match(d.Name()) {
			return nil
		}
		matches = append(matches, filepath.ToSlash(rel))
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf(messages.InstallWalkFmt, root, err)
	}
	sort.Strings(matches)
	return matches, nil
}
