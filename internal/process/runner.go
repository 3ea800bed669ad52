// Package process runs external commands and captures their output.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/conn-castle/core-installer/internal/messages"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes a command inside dir and captures stdout and stderr.
// Implementations return a *CommandError when the command cannot be started or exits non-zero.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (Result, error)
}

// CommandError reports a failed external command together with its captured error stream.
type CommandError struct {
	Command  string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf(messages.ProcessCommandFailedFmt, e.Command, e.Dir, e.Err)
	}
	return fmt.Sprintf(messages.ProcessCommandFailedStderrFmt, e.Command, e.Dir, e.Err, stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandLine renders name and args the way they are reported in errors and logs.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			parts = append(parts, fmt.Sprintf("%q", arg))
			continue
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// Run executes name with args in dir.
func (r ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	if strings.TrimSpace(name) == "" {
		return Result{}, errors.New(messages.ProcessCommandRequired)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if r.Env != nil {
		cmd.Env = r.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}
	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	return result, &CommandError{
		Command:  CommandLine(name, args...),
		Dir:      dir,
		ExitCode: result.ExitCode,
		Stderr:   stderr.String(),
		Err:      err,
	}
}
