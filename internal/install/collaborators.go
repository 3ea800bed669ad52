package install

import (
	"context"

	"github.com/conn-castle/core-installer/internal/pkginfo"
	"github.com/conn-castle/core-installer/internal/store"
)

// Repository is the set of packages the host package manager considers installed.
type Repository interface {
	Packages() ([]pkginfo.Package, error)
	HasPackage(pkg pkginfo.Package) (bool, error)
	AddPackage(pkg pkginfo.Package) error
	RemovePackage(pkg pkginfo.Package) error
}

// Stager performs a plain install: it places the sources of pkg into dir.
type Stager interface {
	Stage(ctx context.Context, pkg pkginfo.Package, dir string) error
}

// Binaries manages the binary stubs of a package installed at root.
type Binaries interface {
	Install(pkg pkginfo.Package, root string) error
	Remove(pkg pkginfo.Package, root string) error
}

// Resolver lists files present at oldRef and absent at newRef, comparing inside dir.
type Resolver interface {
	Resolve(ctx context.Context, dir string, oldRef string, newRef string) ([]string, error)
}

// Journal records install and update operations.
type Journal interface {
	BeginOperation(op store.Operation) (int64, error)
	FinishOperation(op store.Operation) error
}
