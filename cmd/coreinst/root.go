package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conn-castle/core-installer/internal/binstub"
	"github.com/conn-castle/core-installer/internal/changeset"
	"github.com/conn-castle/core-installer/internal/config"
	"github.com/conn-castle/core-installer/internal/install"
	"github.com/conn-castle/core-installer/internal/logging"
	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/pkginfo"
	"github.com/conn-castle/core-installer/internal/process"
	"github.com/conn-castle/core-installer/internal/source"
	"github.com/conn-castle/core-installer/internal/store"
	"github.com/conn-castle/core-installer/internal/terminal"
)

var isTerminal = terminal.IsInteractive

var defaultLogFile = logging.DefaultLogFile

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    int
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().Bool("version", false, messages.RootVersionFlag)
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultFileName, messages.RootConfigFlag)
	cmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", messages.RootVerboseFlag)
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", defaultLogFile(), messages.RootLogFileFlag)

	cmd.AddCommand(
		newInstallCmd(opts),
		newUpdateCmd(opts),
		newPlanCmd(opts),
		newStatusCmd(opts),
		newPathCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

// session bundles the collaborators one command invocation works with.
type session struct {
	cfg       *config.Config
	paths     config.Paths
	logger    zerolog.Logger
	store     *store.Store
	installer *install.CoreInstaller
	target    *pkginfo.Package
	closers   []func() error
}

// openSession loads config, opens the state database, and wires a CoreInstaller.
// manifest overrides the [package] section when set.
func (o *rootOptions) openSession(cmd *cobra.Command, manifest string, diffMaxLines int) (*session, error) {
	logger, closeLog := logging.Setup(logging.Options{
		Verbosity: o.verbose,
		Stderr:    cmd.ErrOrStderr(),
		LogFile:   o.logFile,
	})
	s := &session{logger: logger, closers: []func() error{closeLog}}

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		s.close()
		return nil, err
	}
	s.cfg = cfg
	paths, err := cfg.ResolvePaths(o.configPath)
	if err != nil {
		s.close()
		return nil, err
	}
	s.paths = paths

	s.target = cfg.Package
	if strings.TrimSpace(manifest) != "" {
		pkg, err := pkginfo.LoadManifest(manifest)
		if err != nil {
			s.close()
			return nil, err
		}
		s.target = &pkg
	}

	db, err := store.Open(paths.DBPath)
	if err != nil {
		s.close()
		return nil, err
	}
	s.store = db
	s.closers = append(s.closers, db.Close)

	if diffMaxLines <= 0 {
		diffMaxLines = cfg.Installer.DiffMaxLines
	}
	runner := process.ExecRunner{}
	resolver := changeset.GitResolver{
		Runner: runner,
		Git:    cfg.Installer.Git,
		Logger: logger.With().Str("component", "changeset").Logger(),
	}
	if s.target != nil && cfg.FetchRemoteEnabled() && s.target.Source.Type == pkginfo.SourceGit {
		resolver.Remote = s.target.Source.URL
	}
	inst, err := install.New(install.Options{
		Root:          paths.Root,
		PackageType:   cfg.Installer.PackageType,
		MarkerDir:     cfg.Installer.MarkerDir,
		ScratchParent: paths.ScratchDir,
		Ignore:        cfg.IgnorePolicy(),
		DiffMaxLines:  diffMaxLines,
		Repository:    db,
		Stager: source.Stager{
			Runner: runner,
			Git:    cfg.Installer.Git,
			Logger: logger.With().Str("component", "source").Logger(),
		},
		Binaries: binstub.Installer{
			BinDir: paths.BinDir,
			System: binstub.RealSystem{},
			Logger: logger.With().Str("component", "binstub").Logger(),
		},
		Resolver: resolver,
		Journal:  db,
		System:   install.RealSystem{},
		Logger:   logger.With().Str("component", "install").Logger(),
		Out:      cmd.OutOrStdout(),
	})
	if err != nil {
		s.close()
		return nil, err
	}
	s.installer = inst
	return s, nil
}

// requireTarget returns the package revision to act on or explains how to name one.
func (s *session) requireTarget() (pkginfo.Package, error) {
	if s.target == nil {
		return pkginfo.Package{}, errors.New(messages.CLIPackageRequired)
	}
	if !s.installer.Supports(s.target.Type) {
		return pkginfo.Package{}, fmt.Errorf(messages.CLIPackageTypeUnsupportedFmt, s.target.Name, s.target.Type, s.cfg.Installer.PackageType)
	}
	return *s.target, nil
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn().Err(err).Msg("failed to release resource")
		}
	}
	s.closers = nil
}
