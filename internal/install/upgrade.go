package install

import (
	"context"
	"fmt"

	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/pkginfo"
	"github.com/conn-castle/core-installer/internal/store"
)

// Step names recorded in errors and the operation journal.
const (
	stepStage          = "stage"
	stepChangeSet      = "changeset"
	stepClean          = "clean"
	stepRemoveBinaries = "remove-binaries"
	stepMerge          = "merge"
	stepDelete         = "delete"
	stepBinaries       = "binaries"
	stepRegister       = "register"
)

type transactionStep struct {
	name string
	run  func() error
}

// upgradeState carries one operation's scratch directory and results between steps.
type upgradeState struct {
	scratch      string
	changes      []string
	mergeStarted bool
}

// Install places pkg at the live root. A missing or empty root takes the plain
// staged install; otherwise the package is staged in a scratch directory and
// merged over the live root.
func (c *CoreInstaller) Install(ctx context.Context, pkg pkginfo.Package) error {
	root := c.InstallPath(pkg)
	fresh, err := c.rootIsEmpty(root)
	if err != nil {
		return err
	}
	if fresh {
		return c.freshInstall(ctx, pkg, root)
	}

	previous, err := c.InstalledRevision(pkg.Name)
	if err != nil {
		return err
	}
	if err := c.upgrade(ctx, store.OperationInstallUpgrade, root, previous, pkg); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, messages.InstallNewVersionFmt, pkg.Version)
	return nil
}

// Update replaces initial with target at the live root. It always takes the
// merge path since an update implies a previous installation.
func (c *CoreInstaller) Update(ctx context.Context, initial pkginfo.Package, target pkginfo.Package) error {
	root := c.InstallPath(target)
	if err := c.upgrade(ctx, store.OperationUpdate, root, &initial, target); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, messages.InstallNewVersionFmt, target.Version)
	return nil
}

func (c *CoreInstaller) freshInstall(ctx context.Context, pkg pkginfo.Package, root string) error {
	op := c.newOperation(store.OperationInstall, nil, pkg)
	steps := []transactionStep{
		{name: stepStage, run: func() error { return c.stager.Stage(ctx, pkg, root) }},
		{name: stepBinaries, run: func() error { return c.installBinaries(pkg, root) }},
		{name: stepRegister, run: func() error { return c.register(nil, pkg) }},
	}
	return c.runTransaction(&op, steps, func() {})
}

func (c *CoreInstaller) upgrade(ctx context.Context, kind store.OperationKind, root string, previous *pkginfo.Package, target pkginfo.Package) error {
	op := c.newOperation(kind, previous, target)
	state := &upgradeState{}
	steps := []transactionStep{
		{name: stepStage, run: func() error {
			scratch, err := c.newScratchDir()
			if err != nil {
				return err
			}
			state.scratch = scratch
			op.ScratchDir = scratch
			c.log.Debug().Msg(messages.InstallStagingDebug)
			return c.stager.Stage(ctx, target, scratch)
		}},
		{name: stepChangeSet, run: func() error {
			changes, err := c.resolveChangeSet(ctx, root, previous, target)
			if err != nil {
				return err
			}
			state.changes = changes
			return nil
		}},
		{name: stepClean, run: func() error {
			ignored, err := cleanIgnored(c.sys, state.scratch, c.ignore)
			if err != nil {
				return err
			}
			for _, path := range ignored {
				c.log.Debug().Str("path", path).Msg("dropped ignored path from staged tree")
			}
			return nil
		}},
		{name: stepRemoveBinaries, run: func() error {
			if previous == nil || c.binaries == nil {
				return nil
			}
			return c.binaries.Remove(*previous, root)
		}},
		{name: stepMerge, run: func() error {
			state.mergeStarted = true
			if err := mergeTree(c.sys, state.scratch, root); err != nil {
				return err
			}
			// Every entry reached the live root; the scratch tree is now just a leftover.
			scratch := state.scratch
			state.scratch = ""
			c.removeScratch(scratch)
			return nil
		}},
		{name: stepDelete, run: func() error {
			deleted, err := deleteChangeSet(c.sys, root, state.changes)
			op.DeletedCount = len(deleted)
			for _, path := range deleted {
				c.log.Debug().Str("path", path).Msg("deleted file dropped by new revision")
			}
			return err
		}},
		{name: stepBinaries, run: func() error { return c.installBinaries(target, root) }},
		{name: stepRegister, run: func() error { return c.register(previous, target) }},
	}
	return c.runTransaction(&op, steps, func() {
		if state.mergeStarted {
			if state.scratch != "" {
				_, _ = fmt.Fprintf(c.out, messages.InstallMergeInterruptedFmt, root, state.scratch)
			}
			return
		}
		c.removeScratch(state.scratch)
	})
}

// runTransaction runs steps in order and stops at the first failure. No rollback
// is attempted; onFailure releases whatever the failed operation still owns.
func (c *CoreInstaller) runTransaction(op *store.Operation, steps []transactionStep, onFailure func()) error {
	if c.journal != nil {
		id, err := c.journal.BeginOperation(*op)
		if err != nil {
			return fmt.Errorf(messages.InstallJournalBeginFmt, err)
		}
		op.ID = id
	}
	for _, step := range steps {
		c.log.Debug().Str("step", step.name).Str("package", op.Package).Msg("running install step")
		if err := step.run(); err != nil {
			onFailure()
			op.Status = store.OperationFailed
			op.FailureStep = step.name
			op.FailureError = err.Error()
			if finishErr := c.finishOperation(op); finishErr != nil {
				return fmt.Errorf(messages.InstallStepFailedJournalFmt, step.name, err, finishErr)
			}
			return fmt.Errorf(messages.InstallStepFailedFmt, step.name, err)
		}
	}
	op.Status = store.OperationApplied
	if err := c.finishOperation(op); err != nil {
		return fmt.Errorf(messages.InstallJournalFinishFmt, op.ID, err)
	}
	return nil
}

func (c *CoreInstaller) finishOperation(op *store.Operation) error {
	op.FinishedAt = c.now().UTC()
	if c.journal == nil {
		return nil
	}
	return c.journal.FinishOperation(*op)
}

func (c *CoreInstaller) newOperation(kind store.OperationKind, previous *pkginfo.Package, target pkginfo.Package) store.Operation {
	op := store.Operation{
		Kind:        kind,
		Package:     target.Name,
		ToVersion:   target.Version,
		ToReference: target.SourceReference(),
		Status:      store.OperationStarted,
		StartedAt:   c.now().UTC(),
	}
	if previous != nil {
		op.FromVersion = previous.Version
		op.FromReference = previous.SourceReference()
	}
	return op
}

// resolveChangeSet compares the previous and target references inside the live root.
// Without a previous revision nothing is known to have been removed.
func (c *CoreInstaller) resolveChangeSet(ctx context.Context, root string, previous *pkginfo.Package, target pkginfo.Package) ([]string, error) {
	if previous == nil {
		return nil, nil
	}
	return c.resolver.Resolve(ctx, root, previous.SourceReference(), target.SourceReference())
}

func (c *CoreInstaller) installBinaries(pkg pkginfo.Package, root string) error {
	if c.binaries == nil {
		return nil
	}
	return c.binaries.Install(pkg, root)
}

func (c *CoreInstaller) register(previous *pkginfo.Package, target pkginfo.Package) error {
	if previous != nil {
		if err := c.repo.RemovePackage(*previous); err != nil {
			return fmt.Errorf(messages.InstallUnregisterFmt, previous.Name, err)
		}
	}
	if err := c.repo.AddPackage(target); err != nil {
		return fmt.Errorf(messages.InstallRegisterFmt, target.Name, err)
	}
	return nil
}
