package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/core-installer/internal/fsutil"
	"github.com/conn-castle/core-installer/internal/messages"
)

// mergeTree copies every entry under src onto dst. Files in dst with the same
// relative path are overwritten; entries that only exist in dst are left
// untouched. src stays in place for the caller to remove. A crash part way
// leaves dst partially updated; callers report src so it can be inspected.
func mergeTree(sys System, src string, dst string) error {
	if err := fsutil.CopyTree(sys, src, dst); err != nil {
		return fmt.Errorf(messages.InstallMergeFailedFmt, src, dst, err)
	}
	return nil
}

// deleteChangeSet removes the listed root-relative files from root. Missing
// paths and entries that are not regular files are skipped. It returns the
// paths actually deleted.
func deleteChangeSet(sys System, root string, changes []string) ([]string, error) {
	deleted := make([]string, 0, len(changes))
	for _, rel := range changes {
		path, reachable, err := changeSetPath(sys, root, rel)
		if err != nil {
			return deleted, err
		}
		if !reachable {
			continue
		}
		info, err := sys.Lstat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return deleted, fmt.Errorf(messages.InstallFailedStatFmt, path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if err := sys.Remove(path); err != nil {
			return deleted, fmt.Errorf(messages.InstallDeleteFailedFmt, path, err)
		}
		deleted = append(deleted, filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel))))
	}
	return deleted, nil
}

// changeSetPath resolves a change-set entry inside root. reachable is false when
// a parent of the entry is missing or is not a real directory, so symlinked
// parents are never followed out of root.
func changeSetPath(sys System, root string, relPath string) (string, bool, error) {
	path, err := containedPath(root, relPath)
	if err != nil {
		return "", false, err
	}
	parent := filepath.Dir(filepath.Clean(filepath.FromSlash(relPath)))
	if parent == "." {
		return path, true, nil
	}
	current := root
	for _, part := range strings.Split(parent, string(os.PathSeparator)) {
		current = filepath.Join(current, part)
		info, err := sys.Lstat(current)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return path, false, nil
			}
			return "", false, fmt.Errorf(messages.InstallFailedStatFmt, current, err)
		}
		if !info.IsDir() {
			return path, false, nil
		}
	}
	return path, true, nil
}

// containedPath joins a slash-separated relative path onto root and rejects results outside root.
func containedPath(root string, relPath string) (string, error) {
	if strings.TrimSpace(relPath) == "" {
		return "", fmt.Errorf(messages.InstallChangeSetPathInvalidFmt, relPath)
	}
	cleanRel := filepath.Clean(filepath.FromSlash(relPath))
	if cleanRel == "." || filepath.IsAbs(cleanRel) {
		return "", fmt.Errorf(messages.InstallChangeSetPathInvalidFmt, relPath)
	}
	absPath := filepath.Join(root, cleanRel)
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf(messages.InstallChangeSetPathOutsideFmt, relPath, root)
	}
	return absPath, nil
}
