package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/pkginfo"
)

const (
	// DefaultDiffMaxLines is the default maximum number of diff lines shown per file.
	DefaultDiffMaxLines = 40
	// diffLineCapFlagName is the CLI flag name used to raise per-file diff line caps.
	diffLineCapFlagName = "--diff-lines"
)

// UpgradePlan is a dry-run summary of what Install or Update would do to the live root.
type UpgradePlan struct {
	DryRun        bool          `json:"dry_run"`
	Package       string        `json:"package"`
	Root          string        `json:"root"`
	Fresh         bool          `json:"fresh"`
	FromVersion   string        `json:"from_version,omitempty"`
	FromReference string        `json:"from_reference,omitempty"`
	ToVersion     string        `json:"to_version"`
	ToReference   string        `json:"to_reference,omitempty"`
	Additions     []string      `json:"additions"`
	Updates       []DiffPreview `json:"updates"`
	Deletions     []string      `json:"deletions"`
	Ignored       []string      `json:"ignored"`
	Unchanged     int           `json:"unchanged"`
}

// DiffPreview is a per-file preview of an overwrite.
type DiffPreview struct {
	Path        string `json:"path"`
	UnifiedDiff string `json:"unified_diff,omitempty"`
	Truncated   bool   `json:"truncated,omitempty"`
	Binary      bool   `json:"binary,omitempty"`
	KindChange  bool   `json:"kind_change,omitempty"`
}

func normalizeDiffMaxLines(value int) int {
	if value <= 0 {
		return DefaultDiffMaxLines
	}
	return value
}

// Plan stages target into a scratch directory and reports what installing it
// over the live root would change. previous may be nil. The live root is only read.
func (c *CoreInstaller) Plan(ctx context.Context, target pkginfo.Package, previous *pkginfo.Package) (UpgradePlan, error) {
	root := c.InstallPath(target)
	plan := UpgradePlan{
		DryRun:      true,
		Package:     target.DisplayName(),
		Root:        root,
		ToVersion:   target.Version,
		ToReference: target.SourceReference(),
		Additions:   []string{},
		Updates:     []DiffPreview{},
		Deletions:   []string{},
		Ignored:     []string{},
	}
	if previous != nil {
		plan.FromVersion = previous.Version
		plan.FromReference = previous.SourceReference()
	}

	fresh, err := c.rootIsEmpty(root)
	if err != nil {
		return UpgradePlan{}, err
	}
	plan.Fresh = fresh

	scratch, err := c.newScratchDir()
	if err != nil {
		return UpgradePlan{}, err
	}
	defer c.removeScratch(scratch)

	if err := c.stager.Stage(ctx, target, scratch); err != nil {
		return UpgradePlan{}, fmt.Errorf(messages.InstallPlanStageFmt, target.Name, err)
	}
	if fresh {
		files, err := listEntries(c.sys, scratch)
		if err != nil {
			return UpgradePlan{}, err
		}
		plan.Additions = files
		return plan, nil
	}

	changes, err := c.resolveChangeSet(ctx, root, previous, target)
	if err != nil {
		return UpgradePlan{}, err
	}
	ignored, err := findIgnored(c.sys, scratch, c.ignore)
	if err != nil {
		return UpgradePlan{}, err
	}
	plan.Ignored = ignored
	if err := c.classifyStaged(scratch, root, &plan); err != nil {
		return UpgradePlan{}, err
	}
	for _, rel := range changes {
		path, reachable, err := changeSetPath(c.sys, root, rel)
		if err != nil {
			return UpgradePlan{}, err
		}
		if !reachable {
			continue
		}
		if info, err := c.sys.Lstat(path); err == nil && info.Mode().IsRegular() {
			plan.Deletions = append(plan.Deletions, filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel))))
		}
	}
	sort.Strings(plan.Deletions)
	return plan, nil
}

// classifyStaged compares each staged non-directory entry with the live root.
func (c *CoreInstaller) classifyStaged(scratch string, root string, plan *UpgradePlan) error {
	err := c.sys.WalkDir(scratch, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == scratch {
			return nil
		}
		if c.ignore.Match(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(scratch, path)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		livePath := filepath.Join(root, rel)
		liveInfo, err := c.sys.Lstat(livePath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				plan.Additions = append(plan.Additions, relSlash)
				return nil
			}
			return fmt.Errorf(messages.InstallFailedStatFmt, livePath, err)
		}
		preview, changed, err := c.previewEntry(relSlash, path, d, livePath, liveInfo)
		if err != nil {
			return err
		}
		if !changed {
			plan.Unchanged++
			return nil
		}
		plan.Updates = append(plan.Updates, preview)
		return nil
	})
	if err != nil {
		return fmt.Errorf(messages.InstallWalkFmt, scratch, err)
	}
	sort.Strings(plan.Additions)
	sort.Slice(plan.Updates, func(i, j int) bool { return plan.Updates[i].Path < plan.Updates[j].Path })
	return nil
}

func (c *CoreInstaller) previewEntry(rel string, stagedPath string, staged fs.DirEntry, livePath string, live os.FileInfo) (DiffPreview, bool, error) {
	preview := DiffPreview{Path: rel}
	if staged.Type()&fs.ModeSymlink != 0 {
		if live.Mode()&fs.ModeSymlink == 0 {
			preview.KindChange = true
			return preview, true, nil
		}
		stagedLink, err := c.sys.Readlink(stagedPath)
		if err != nil {
			return DiffPreview{}, false, err
		}
		liveLink, err := c.sys.Readlink(livePath)
		if err != nil {
			return DiffPreview{}, false, err
		}
		if stagedLink == liveLink {
			return preview, false, nil
		}
		preview.UnifiedDiff, preview.Truncated = renderTruncatedUnifiedDiff(rel+" (current link)", rel+" (new link)", liveLink+"\n", stagedLink+"\n", c.diffMaxLines)
		return preview, true, nil
	}
	if !live.Mode().IsRegular() {
		preview.KindChange = true
		return preview, true, nil
	}
	stagedBytes, err := c.sys.ReadFile(stagedPath)
	if err != nil {
		return DiffPreview{}, false, err
	}
	liveBytes, err := c.sys.ReadFile(livePath)
	if err != nil {
		return DiffPreview{}, false, err
	}
	if bytes.Equal(stagedBytes, liveBytes) {
		return preview, false, nil
	}
	if isBinary(stagedBytes) || isBinary(liveBytes) {
		preview.Binary = true
		return preview, true, nil
	}
	preview.UnifiedDiff, preview.Truncated = renderTruncatedUnifiedDiff(rel+" (current)", rel+" (new)", string(liveBytes), string(stagedBytes), c.diffMaxLines)
	return preview, true, nil
}

// listEntries returns every non-directory entry below root as sorted slash-separated paths.
func listEntries(sys System, root string) ([]string, error) {
	files := []string{}
	err := sys.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf(messages.InstallWalkFmt, root, err)
	}
	sort.Strings(files)
	return files, nil
}

func isBinary(data []byte) bool {
	limit := len(data)
	if limit > 8000 {
		limit = 8000
	}
	return bytes.IndexByte(data[:limit], 0) >= 0
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := normalizeDiffMaxLines(maxLines)
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitDiffLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := lines[:limit]
	truncated = append(
		truncated,
		fmt.Sprintf("... (truncated to %d lines; rerun with %s <n> to see more)", limit, diffLineCapFlagName),
	)
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" {
		return ""
	}
	if strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
