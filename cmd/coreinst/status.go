package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/pkginfo"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, "", 0)
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			name := ""
			if s.target != nil {
				name = s.target.Name
			}
			recorded, err := recordedRevision(s, name)
			if err != nil {
				return err
			}
			subject := pkginfo.Package{}
			if recorded != nil {
				subject = *recorded
			} else if s.target != nil {
				subject = *s.target
			}
			_, _ = fmt.Fprintf(out, messages.StatusRootFmt, s.installer.InstallPath(subject))
			if recorded == nil {
				_, _ = fmt.Fprintln(out, color.YellowString(messages.StatusNotRecorded))
				return nil
			}
			_, _ = fmt.Fprintf(out, messages.StatusRecordedFmt, recorded.DisplayName(), recorded.String())
			installed, err := s.installer.IsInstalled(*recorded)
			if err != nil {
				return err
			}
			if installed {
				_, _ = fmt.Fprintln(out, color.GreenString(messages.StatusInstalled))
			} else {
				_, _ = fmt.Fprintln(out, color.RedString(messages.StatusMarkerMissingFmt, s.cfg.Installer.MarkerDir))
			}
			if s.target != nil && s.target.Name == recorded.Name && !s.target.SameRevision(*recorded) {
				_, _ = fmt.Fprintf(out, messages.StatusUpdateAvailableFmt, s.target.String())
			}
			return nil
		},
	}
}

// recordedRevision returns the recorded revision named name, or the only
// recorded package of the configured type when name is empty.
func recordedRevision(s *session, name string) (*pkginfo.Package, error) {
	if name != "" {
		return s.store.FindPackage(name)
	}
	packages, err := s.store.Packages()
	if err != nil {
		return nil, err
	}
	for _, pkg := range packages {
		if s.installer.Supports(pkg.Type) {
			found := pkg
			return &found, nil
		}
	}
	return nil, nil
}

func newPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.PathUse,
		Short: messages.PathShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, "", 0)
			if err != nil {
				return err
			}
			defer s.close()
			subject := pkginfo.Package{}
			if s.target != nil {
				subject = *s.target
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s.installer.InstallPath(subject))
			return err
		},
	}
}
