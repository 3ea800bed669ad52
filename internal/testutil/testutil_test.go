package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteStubWithExitCreatesExecutableWithRequestedExitCode(t *testing.T) {
	dir := t.TempDir()
	stubPath := filepath.Join(dir, "exit-stub")
	WriteStubWithExit(t, dir, "exit-stub", 7)

	info, err := os.Stat(stubPath)
	if err != nil {
		t.Fatalf("stat stub: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected mode 0755, got %#o", info.Mode().Perm())
	}

	err = exec.Command(stubPath).Run()
	if err == nil {
		t.Fatal("expected non-zero exit status")
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T", err)
	}
	if exitErr.ExitCode() != 7 {
		t.Fatalf("expected exit code 7, got %d", exitErr.ExitCode())
	}
}

func TestWriteScriptRunsBody(t *testing.T) {
	dir := t.TempDir()
	WriteScript(t, dir, "echo-stub", "echo hello\n")

	out, err := exec.Command(filepath.Join(dir, "echo-stub")).Output()
	if err != nil {
		t.Fatalf("run script: %v", err)
	}
	if string(out) != "hello\n" {
		t.Fatalf("unexpected output %q", string(out))
	}
}

func TestWriteTreeAndReadTreeRoundTrip(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"a.txt":      "a",
		"dir/b.txt":  "b",
		"skip/c.txt": "c",
		"empty/":     "",
	}
	WriteTree(t, root, files)

	got := ReadTree(t, root, "skip")
	want := map[string]string{"a.txt": "a", "dir/b.txt": "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadTree = %v, want %v", got, want)
	}
	if info, err := os.Stat(filepath.Join(root, "empty")); err != nil || !info.IsDir() {
		t.Fatalf("expected empty directory, err=%v", err)
	}
	if keys := SortedKeys(got); !reflect.DeepEqual(keys, []string{"a.txt", "dir/b.txt"}) {
		t.Fatalf("SortedKeys = %v", keys)
	}
}

func TestWithWorkingDirRestoresDirectory(t *testing.T) {
	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	dir := t.TempDir()
	WithWorkingDir(t, dir, func() {
		cwd, err := os.Getwd()
		if err != nil {
			t.Fatalf("getwd: %v", err)
		}
		resolvedDir, _ := filepath.EvalSymlinks(dir)
		resolvedCwd, _ := filepath.EvalSymlinks(cwd)
		if resolvedCwd != resolvedDir {
			t.Fatalf("expected cwd %s, got %s", resolvedDir, resolvedCwd)
		}
	})
	after, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if after != original {
		t.Fatalf("expected cwd restored to %s, got %s", original, after)
	}
}
