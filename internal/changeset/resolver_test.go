package changeset

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/core-installer/internal/process"
	"github.com/conn-castle/core-installer/internal/testutil"
)

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	calls   []call
	results map[string]process.Result
	errs    map[string]error
}

func (f *fakeRunner) Run(_ context.Context, dir string, name string, args ...string) (process.Result, error) {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	key := ""
	if len(args) > 0 {
		key = args[0]
		if key == "-c" && len(args) > 2 {
			key = args[2]
		}
	}
	return f.results[key], f.errs[key]
}

func TestResolveEqualReferencesSkipsGit(t *testing.T) {
	runner := &fakeRunner{}
	paths, err := GitResolver{Runner: runner, Remote: "origin"}.Resolve(context.Background(), "/live", "abc", "abc")
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.Empty(t, runner.calls)
}

func TestResolveEqualReferencesWithoutRunner(t *testing.T) {
	paths, err := GitResolver{}.Resolve(context.Background(), "/live", "", "")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestResolveParsesDeletedFiles(t *testing.T) {
	runner := &fakeRunner{results: map[string]process.Result{
		"diff": {Stdout: []byte("README.md\nlib/old.php\n\n")},
	}}
	paths, err := GitResolver{Runner: runner}.Resolve(context.Background(), "/live", "refA", "refB")
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "lib/old.php"}, paths)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "/live", runner.calls[0].dir)
	assert.Equal(t, DefaultGit, runner.calls[0].name)
	assert.Equal(t, []string{"-c", "core.quotepath=off", "diff", "--name-only", "--diff-filter=D", "refA", "refB"}, runner.calls[0].args)
}

func TestResolveFetchesRemoteFirst(t *testing.T) {
	runner := &fakeRunner{results: map[string]process.Result{"diff": {Stdout: []byte("gone.txt\n")}}}
	resolver := GitResolver{Runner: runner, Git: "/opt/git", Remote: "https://example.com/core.git"}

	paths, err := resolver.Resolve(context.Background(), "/live", "refA", "refB")
	require.NoError(t, err)
	assert.Equal(t, []string{"gone.txt"}, paths)
	require.Len(t, runner.calls, 2)
	assert.Equal(t, "/opt/git", runner.calls[0].name)
	assert.Equal(t, []string{"fetch", "--quiet", "https://example.com/core.git", "refB"}, runner.calls[0].args)
	assert.Equal(t, "diff", runner.calls[1].args[2])
}

func TestResolveFetchFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"fetch": errors.New("network down")}}
	_, err := GitResolver{Runner: runner, Remote: "origin"}.Resolve(context.Background(), "/live", "refA", "refB")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
	assert.Len(t, runner.calls, 1)
}

func TestResolveDiffFailureSurfacesStderr(t *testing.T) {
	cmdErr := &process.CommandError{
		Command:  "git diff",
		Dir:      "/live",
		ExitCode: 128,
		Stderr:   "fatal: bad revision 'refA'",
		Err:      errors.New("exit status 128"),
	}
	runner := &fakeRunner{errs: map[string]error{"diff": cmdErr}}
	paths, err := GitResolver{Runner: runner}.Resolve(context.Background(), "/live", "refA", "refB")
	require.Error(t, err)
	assert.Nil(t, paths)
	assert.Contains(t, err.Error(), "fatal: bad revision 'refA'")

	var got *process.CommandError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 128, got.ExitCode)
}

func TestResolveRequiresRunner(t *testing.T) {
	_, err := GitResolver{}.Resolve(context.Background(), "/live", "a", "b")
	require.Error(t, err)
}

func TestResolveWithExecRunnerStub(t *testing.T) {
	bin := t.TempDir()
	testutil.WriteScript(t, bin, "git", "printf 'removed.txt\\r\\nsub/also.txt\\n'\n")

	paths, err := GitResolver{Runner: process.ExecRunner{}, Git: filepath.Join(bin, "git")}.Resolve(context.Background(), t.TempDir(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"removed.txt", "sub/also.txt"}, paths)
}

func TestResolveWithExecRunnerStubFailure(t *testing.T) {
	bin := t.TempDir()
	testutil.WriteScript(t, bin, "git", "echo 'fatal: not a git repository' >&2\nexit 128\n")

	_, err := GitResolver{Runner: process.ExecRunner{}, Git: filepath.Join(bin, "git")}.Resolve(context.Background(), t.TempDir(), "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestParseNameOnly(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{name: "empty", output: "", want: []string{}},
		{name: "trailing newlines", output: "a\n\n\n", want: []string{"a"}},
		{name: "crlf", output: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "spaces kept", output: "dir/with space.txt\n", want: []string{"dir/with space.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNameOnly(tt.output))
		})
	}
}
