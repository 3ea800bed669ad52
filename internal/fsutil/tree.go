package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/conn-castle/core-installer/internal/messages"
)

// IsDirEmpty reports whether path is a directory without entries.
// A missing path is reported as empty.
func IsDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// TreeFS is the filesystem surface CopyTree works through.
type TreeFS interface {
	Lstat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	Readlink(name string) (string, error)
	MkdirAll(path string, perm os.FileMode) error
	RemoveAll(path string) error
	Symlink(oldname string, newname string) error
	WalkDir(root string, fn fs.WalkDirFunc) error
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error
}

// OS implements TreeFS on the host filesystem.
type OS struct{}

func (OS) Lstat(name string) (os.FileInfo, error)       { return os.Lstat(name) }
func (OS) ReadFile(name string) ([]byte, error)         { return os.ReadFile(name) }
func (OS) Readlink(name string) (string, error)         { return os.Readlink(name) }
func (OS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (OS) RemoveAll(path string) error                  { return os.RemoveAll(path) }
func (OS) Symlink(oldname string, newname string) error { return os.Symlink(oldname, newname) }
func (OS) WalkDir(root string, fn fs.WalkDirFunc) error { return filepath.WalkDir(root, fn) }

func (OS) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return WriteFileAtomic(filename, data, perm)
}

// CopyTree copies every entry under src onto dst, creating dst when needed.
// Same-path entries in dst are overwritten, replacing an entry of another kind
// (a file takes the place of a directory or symlink and the other way round).
// Entries only present in dst are left alone. Regular files keep their
// permission bits and symlinks are recreated as links. src is not modified.
func CopyTree(fsys TreeFS, src string, dst string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return fmt.Errorf(messages.FsutilStatFmt, src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf(messages.FsutilCopySourceNotDirFmt, src)
	}
	if err := fsys.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf(messages.FsutilCreateDirFmt, dst, err)
	}
	return fsys.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == src {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return copyDir(fsys, path, target)
		case d.Type()&fs.ModeSymlink != 0:
			return copySymlink(fsys, path, target)
		default:
			return copyFile(fsys, path, target)
		}
	})
}

func copyDir(fsys TreeFS, src string, target string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return fmt.Errorf(messages.FsutilStatFmt, src, err)
	}
	existing, err := fsys.Lstat(target)
	switch {
	case err == nil && existing.IsDir():
		return nil
	case err == nil:
		if err := fsys.RemoveAll(target); err != nil {
			return fmt.Errorf(messages.FsutilReplaceFmt, target, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf(messages.FsutilStatFmt, target, err)
	}
	if err := fsys.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
		return fmt.Errorf(messages.FsutilCreateDirFmt, target, err)
	}
	return nil
}

func copyFile(fsys TreeFS, src string, target string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return fmt.Errorf(messages.FsutilStatFmt, src, err)
	}
	if err := clearNonRegular(fsys, target); err != nil {
		return err
	}
	data, err := fsys.ReadFile(src)
	if err != nil {
		return fmt.Errorf(messages.FsutilReadFmt, src, err)
	}
	if err := fsys.WriteFileAtomic(target, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf(messages.FsutilWriteFmt, target, err)
	}
	return nil
}

func copySymlink(fsys TreeFS, src string, target string) error {
	link, err := fsys.Readlink(src)
	if err != nil {
		return fmt.Errorf(messages.FsutilReadFmt, src, err)
	}
	if err := fsys.RemoveAll(target); err != nil {
		return fmt.Errorf(messages.FsutilReplaceFmt, target, err)
	}
	if err := fsys.Symlink(link, target); err != nil {
		return fmt.Errorf(messages.FsutilWriteFmt, target, err)
	}
	return nil
}

// clearNonRegular removes target when it exists as anything but a regular file.
func clearNonRegular(fsys TreeFS, target string) error {
	existing, err := fsys.Lstat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.FsutilStatFmt, target, err)
	}
	if existing.Mode().IsRegular() {
		return nil
	}
	if err := fsys.RemoveAll(target); err != nil {
		return fmt.Errorf(messages.FsutilReplaceFmt, target, err)
	}
	return nil
}
