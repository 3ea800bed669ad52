package install

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/conn-castle/core-installer/internal/pkginfo"
	"github.com/conn-castle/core-installer/internal/store"
	"github.com/conn-castle/core-installer/internal/testutil"
)

// faultSystem is a test helper that allows deterministic error injection for the
// installer System interface without chmod-based permission tricks.
type faultSystem struct {
	base       System
	statErrs   map[string]error
	readErrs   map[string]error
	walkErrs   map[string]error
	mkdirErrs  map[string]error
	removeErrs map[string]error
	writeErrs  map[string]error
	tempErr    error
	// tempRemoveErr fails RemoveAll of directories created through MkdirTemp.
	tempRemoveErr error
	temps         []string
	removed       []string
}

func newFaultSystem(base System) *faultSystem {
	return &faultSystem{
		base:       base,
		statErrs:   map[string]error{},
		readErrs:   map[string]error{},
		walkErrs:   map[string]error{},
		mkdirErrs:  map[string]error{},
		removeErrs: map[string]error{},
		writeErrs:  map[string]error{},
	}
}

func normalizePath(path string) string {
	return filepath.Clean(path)
}

func (f *faultSystem) Lstat(name string) (os.FileInfo, error) {
	if err, ok := f.statErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.Lstat(name)
}

func (f *faultSystem) Stat(name string) (os.FileInfo, error) {
	if err, ok := f.statErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.Stat(name)
}

func (f *faultSystem) ReadFile(name string) ([]byte, error) {
	if err, ok := f.readErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.ReadFile(name)
}

func (f *faultSystem) ReadDir(name string) ([]os.DirEntry, error) {
	if err, ok := f.readErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.ReadDir(name)
}

func (f *faultSystem) Readlink(name string) (string, error) {
	if err, ok := f.readErrs[normalizePath(name)]; ok {
		return "", err
	}
	return f.base.Readlink(name)
}

func (f *faultSystem) MkdirAll(path string, perm os.FileMode) error {
	if err, ok := f.mkdirErrs[normalizePath(path)]; ok {
		return err
	}
	return f.base.MkdirAll(path, perm)
}

func (f *faultSystem) MkdirTemp(dir string, pattern string) (string, error) {
	if f.tempErr != nil {
		return "", f.tempErr
	}
	path, err := f.base.MkdirTemp(dir, pattern)
	if err == nil {
		f.temps = append(f.temps, normalizePath(path))
	}
	return path, err
}

func (f *faultSystem) Remove(name string) error {
	if err, ok := f.removeErrs[normalizePath(name)]; ok {
		return err
	}
	f.removed = append(f.removed, normalizePath(name))
	return f.base.Remove(name)
}

func (f *faultSystem) RemoveAll(path string) error {
	if err, ok := f.removeErrs[normalizePath(path)]; ok {
		return err
	}
	if f.tempRemoveErr != nil {
		for _, temp := range f.temps {
			if temp == normalizePath(path) {
				return f.tempRemoveErr
			}
		}
	}
	f.removed = append(f.removed, normalizePath(path))
	return f.base.RemoveAll(path)
}

func (f *faultSystem) Symlink(oldname string, newname string) error {
	if err, ok := f.writeErrs[normalizePath(newname)]; ok {
		return err
	}
	return f.base.Symlink(oldname, newname)
}

func (f *faultSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	if err, ok := f.walkErrs[normalizePath(root)]; ok {
		return err
	}
	return f.base.WalkDir(root, fn)
}

func (f *faultSystem) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if err, ok := f.writeErrs[normalizePath(filename)]; ok {
		return err
	}
	return f.base.WriteFileAtomic(filename, data, perm)
}

// fakeRepository keeps registered packages in memory.
type fakeRepository struct {
	packages  []pkginfo.Package
	listErr   error
	addErr    error
	removeErr error
}

func (r *fakeRepository) Packages() ([]pkginfo.Package, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]pkginfo.Package(nil), r.packages...), nil
}

func (r *fakeRepository) HasPackage(pkg pkginfo.Package) (bool, error) {
	if r.listErr != nil {
		return false, r.listErr
	}
	for _, existing := range r.packages {
		if existing.SameRevision(pkg) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepository) AddPackage(pkg pkginfo.Package) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.packages = append(r.packages, pkg)
	return nil
}

func (r *fakeRepository) RemovePackage(pkg pkginfo.Package) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	kept := r.packages[:0]
	for _, existing := range r.packages {
		if !existing.SameRevision(pkg) {
			kept = append(kept, existing)
		}
	}
	r.packages = kept
	return nil
}

// fakeStager writes a fixed tree per package version into the staging directory.
type fakeStager struct {
	t     *testing.T
	trees map[string]map[string]string
	err   error
	dirs  []string
}

func (s *fakeStager) Stage(_ context.Context, pkg pkginfo.Package, dir string) error {
	s.dirs = append(s.dirs, dir)
	if s.err != nil {
		return s.err
	}
	tree, ok := s.trees[pkg.Version]
	if !ok {
		return errors.New("no tree for version " + pkg.Version)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	testutil.WriteTree(s.t, dir, tree)
	return nil
}

type resolveCall struct {
	dir    string
	oldRef string
	newRef string
}

// fakeResolver returns a canned change set and records where it was asked to compare.
type fakeResolver struct {
	changes []string
	err     error
	calls   []resolveCall
}

func (r *fakeResolver) Resolve(_ context.Context, dir string, oldRef string, newRef string) ([]string, error) {
	r.calls = append(r.calls, resolveCall{dir: dir, oldRef: oldRef, newRef: newRef})
	if r.err != nil {
		return nil, r.err
	}
	return r.changes, nil
}

// fakeBinaries records stub installs and removals as "name@version".
type fakeBinaries struct {
	installed  []string
	removed    []string
	installErr error
	removeErr  error
}

func (b *fakeBinaries) Install(pkg pkginfo.Package, _ string) error {
	if b.installErr != nil {
		return b.installErr
	}
	b.installed = append(b.installed, pkg.Name+"@"+pkg.Version)
	return nil
}

func (b *fakeBinaries) Remove(pkg pkginfo.Package, _ string) error {
	if b.removeErr != nil {
		return b.removeErr
	}
	b.removed = append(b.removed, pkg.Name+"@"+pkg.Version)
	return nil
}

// fakeJournal keeps the last recorded state of every operation.
type fakeJournal struct {
	begun    []store.Operation
	finished []store.Operation
	beginErr error
}

func (j *fakeJournal) BeginOperation(op store.Operation) (int64, error) {
	if j.beginErr != nil {
		return 0, j.beginErr
	}
	j.begun = append(j.begun, op)
	return int64(len(j.begun)), nil
}

func (j *fakeJournal) FinishOperation(op store.Operation) error {
	j.finished = append(j.finished, op)
	return nil
}

// fixture wires a CoreInstaller to a temp live root and in-memory collaborators.
type fixture struct {
	root     string
	scratch  string
	sys      *faultSystem
	repo     *fakeRepository
	stager   *fakeStager
	resolver *fakeResolver
	binaries *fakeBinaries
	journal  *fakeJournal
	out      *testBuffer
	inst     *CoreInstaller
}

type testBuffer struct {
	data []byte
}

func (b *testBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *testBuffer) String() string {
	return string(b.data)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{
		root:     filepath.Join(base, "root"),
		scratch:  filepath.Join(base, "scratch"),
		sys:      newFaultSystem(RealSystem{}),
		repo:     &fakeRepository{},
		stager:   &fakeStager{t: t, trees: map[string]map[string]string{}},
		resolver: &fakeResolver{},
		binaries: &fakeBinaries{},
		journal:  &fakeJournal{},
		out:      &testBuffer{},
	}
	if err := os.MkdirAll(f.scratch, 0o755); err != nil {
		t.Fatalf("mkdir scratch parent: %v", err)
	}
	inst, err := New(Options{
		Root:          f.root,
		PackageType:   "rubedo-core",
		MarkerDir:     "module/Rubedo",
		ScratchParent: f.scratch,
		Ignore:        DefaultIgnorePolicy(),
		Repository:    f.repo,
		Stager:        f.stager,
		Binaries:      f.binaries,
		Resolver:      f.resolver,
		Journal:       f.journal,
		System:        f.sys,
		Logger:        zerolog.Nop(),
		Out:           f.out,
		Now:           func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.inst = inst
	return f
}

// scratchEntries lists what is left in the scratch parent directory.
func (f *fixture) scratchEntries(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.scratch)
	if err != nil {
		t.Fatalf("read scratch parent: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func corePackage(version string, ref string) pkginfo.Package {
	return pkginfo.Package{
		Name:       "rubedo/core",
		PrettyName: "Rubedo Core",
		Version:    version,
		Type:       "rubedo-core",
		Source: pkginfo.Source{
			Type:      pkginfo.SourceGit,
			URL:       "https://example.test/rubedo/core.git",
			Reference: ref,
		},
		Binaries: []string{"bin/rubedo"},
	}
}
