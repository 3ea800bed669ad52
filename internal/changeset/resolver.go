// Package changeset computes the files removed between two revisions of a package.
package changeset

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/process"
)

// DefaultGit is the git executable used when GitResolver.Git is empty.
const DefaultGit = "git"

// GitResolver lists deleted files between two git references of a working tree.
type GitResolver struct {
	Runner process.Runner
	// Git is the git executable; defaults to DefaultGit.
	Git string
	// Remote, when set, is fetched for the new reference before diffing so the
	// working tree's history contains it.
	Remote string
	Logger zerolog.Logger
}

// Resolve returns the slash-separated paths present at oldRef and absent at newRef.
// dir must be inside a git working tree that knows both references.
// Equal references short-circuit to an empty result without running git.
func (r GitResolver) Resolve(ctx context.Context, dir string, oldRef string, newRef string) ([]string, error) {
	if oldRef == newRef {
		return nil, nil
	}
	if r.Runner == nil {
		return nil, fmt.Errorf(messages.ChangeSetRunnerRequired)
	}
	git := r.Git
	if strings.TrimSpace(git) == "" {
		git = DefaultGit
	}

	if r.Remote != "" && newRef != "" {
		fetchArgs := []string{"fetch", "--quiet", r.Remote, newRef}
		r.Logger.Debug().Str("dir", dir).Str("command", process.CommandLine(git, fetchArgs...)).Msg("fetching new reference")
		if _, err := r.Runner.Run(ctx, dir, git, fetchArgs...); err != nil {
			return nil, fmt.Errorf(messages.ChangeSetFetchFailedFmt, newRef, err)
		}
	}

	args := []string{"-c", "core.quotepath=off", "diff", "--name-only", "--diff-filter=D", oldRef, newRef}
	r.Logger.Debug().Str("dir", dir).Str("command", process.CommandLine(git, args...)).Msg("resolving change set")
	result, err := r.Runner.Run(ctx, dir, git, args...)
	if err != nil {
		return nil, fmt.Errorf(messages.ChangeSetDiffFailedFmt, oldRef, newRef, err)
	}
	paths := ParseNameOnly(string(result.Stdout))
	r.Logger.Debug().Int("count", len(paths)).Msg("change set resolved")
	return paths, nil
}

// ParseNameOnly splits `git diff --name-only` output into one path per line, dropping blank entries.
func ParseNameOnly(output string) []string {
	lines := strings.Split(output, "\n")
	paths := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}
