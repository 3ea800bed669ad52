package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/core-installer/internal/fsutil"
	"github.com/conn-castle/core-installer/internal/lock"
	"github.com/conn-castle/core-installer/internal/messages"
)

func newInstallCmd(opts *rootOptions) *cobra.Command {
	var manifest string
	var yes bool

	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, manifest, 0)
			if err != nil {
				return err
			}
			defer s.close()

			target, err := s.requireTarget()
			if err != nil {
				return err
			}
			root := s.installer.InstallPath(target)
			return lock.WithFileLock(s.paths.LockPath, func() error {
				if !yes && isTerminal() {
					proceed, err := confirmMergeIntoUnrecordedRoot(cmd, s, root, target.Name)
					if err != nil {
						return err
					}
					if !proceed {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), messages.InstallCancelled)
						return nil
					}
				}
				if err := s.installer.Install(cmd.Context(), target); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), color.GreenString(messages.InstallDoneFmt, target.String(), root))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", messages.FlagManifest)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.InstallFlagYes)
	return cmd
}

// confirmMergeIntoUnrecordedRoot asks before merging over a populated root that
// has no recorded revision of the package. Other cases proceed without asking.
func confirmMergeIntoUnrecordedRoot(cmd *cobra.Command, s *session, root string, name string) (bool, error) {
	empty, err := fsutil.IsDirEmpty(root)
	if err != nil || empty {
		return true, err
	}
	recorded, err := s.store.FindPackage(name)
	if err != nil || recorded != nil {
		return true, err
	}
	prompt := fmt.Sprintf(messages.InstallMergeUnrecordedPromptFmt, root)
	return promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), prompt, false)
}
