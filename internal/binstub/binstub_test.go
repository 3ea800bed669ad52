package binstub

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/core-installer/internal/pkginfo"
	"github.com/conn-castle/core-installer/internal/testutil"
)

func stubPackage() pkginfo.Package {
	return pkginfo.Package{Name: "webtales/rubedo", Version: "3.4.0", Binaries: []string{"bin/rubedo"}}
}

func TestInstallWritesRunnableStub(t *testing.T) {
	root := filepath.Join(t.TempDir(), "it's root")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	testutil.WriteScript(t, filepath.Join(root, "bin"), "rubedo", "echo \"rubedo $*\"\n")
	binDir := filepath.Join(t.TempDir(), "vendor", "bin")

	inst := Installer{BinDir: binDir, System: RealSystem{}, Logger: zerolog.Nop()}
	require.NoError(t, inst.Install(stubPackage(), root))

	stub := filepath.Join(binDir, "rubedo")
	info, err := os.Stat(stub)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100)

	out, err := exec.Command(stub, "cache", "clear").Output()
	require.NoError(t, err)
	assert.Equal(t, "rubedo cache clear\n", string(out))
}

func TestInstallMissingTarget(t *testing.T) {
	inst := Installer{BinDir: t.TempDir(), System: RealSystem{}}
	err := inst.Install(stubPackage(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bin/rubedo")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInstallAndRemoveWithoutBinariesIsNoop(t *testing.T) {
	inst := Installer{}
	pkg := pkginfo.Package{Name: "x"}
	require.NoError(t, inst.Install(pkg, "/nowhere"))
	require.NoError(t, inst.Remove(pkg, "/nowhere"))
}

func TestRemoveOnlyDeletesOwnStubs(t *testing.T) {
	binDir := t.TempDir()
	inst := Installer{BinDir: binDir, System: RealSystem{}, Logger: zerolog.Nop()}
	pkg := stubPackage()
	pkg.Binaries = []string{"bin/rubedo", "bin/other", "bin/missing"}

	require.NoError(t, os.WriteFile(filepath.Join(binDir, "rubedo"), []byte(Script(pkg.Name, "/srv/bin/rubedo")), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "other"), []byte("#!/bin/sh\necho mine\n"), 0o755))

	require.NoError(t, inst.Remove(pkg, "/srv"))
	assert.NoFileExists(t, filepath.Join(binDir, "rubedo"))
	assert.FileExists(t, filepath.Join(binDir, "other"))
}

type failingSystem struct {
	RealSystem
	writeErr error
}

func (f failingSystem) WriteFileAtomic(string, []byte, os.FileMode) error {
	return f.writeErr
}

func TestInstallWriteFailure(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"bin/rubedo": "x"})
	writeErr := errors.New("read-only file system")
	inst := Installer{BinDir: t.TempDir(), System: failingSystem{writeErr: writeErr}}
	err := inst.Install(stubPackage(), root)
	assert.ErrorIs(t, err, writeErr)
}

func TestValidate(t *testing.T) {
	err := Installer{System: RealSystem{}}.Install(stubPackage(), t.TempDir())
	require.Error(t, err)
	err = Installer{BinDir: t.TempDir()}.Remove(stubPackage(), t.TempDir())
	require.Error(t, err)
}

func TestScriptQuotesTarget(t *testing.T) {
	script := Script("p", "/srv/it's here/bin/x")
	assert.True(t, strings.HasPrefix(script, "#!/bin/sh\n"))
	assert.Contains(t, script, `exec '/srv/it'\''s here/bin/x' "$@"`)
	assert.Equal(t, filepath.Join("/b", "x"), StubPath("/b", "bin/x"))
}
