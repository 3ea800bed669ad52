package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/core-installer/internal/lock"
	"github.com/conn-castle/core-installer/internal/messages"
)

// confirmFunc asks a yes/no question in an interactive terminal.
var confirmFunc = huhConfirm

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var manifest string
	var yes bool

	cmd := &cobra.Command{
		Use:   messages.UpdateUse,
		Short: messages.UpdateShort,
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
			return lock.WithFileLock(s.paths.LockPath, func() error {
				previous, err := s.store.FindPackage(target.Name)
				if err != nil {
					return err
				}
				if previous == nil {
					return fmt.Errorf(messages.UpdateNotInstalledFmt, target.Name)
				}
				if previous.SameRevision(target) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.UpdateUpToDateFmt, previous.String())
					return nil
				}
				if !yes {
					if !isTerminal() {
						return errors.New(messages.UpdateRequiresConfirmation)
					}
					title := fmt.Sprintf(messages.UpdateConfirmFmt, target.DisplayName(), previous.String(), target.String())
					proceed, err := confirmFunc(cmd, title)
					if err != nil {
						return err
					}
					if !proceed {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), messages.UpdateCancelled)
						return nil
					}
				}
				if err := s.installer.Update(cmd.Context(), *previous, target); err != nil {
					return err
				}
				root := s.installer.InstallPath(target)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), color.GreenString(messages.UpdateDoneFmt, previous.String(), target.String(), root))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", messages.FlagManifest)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.UpdateFlagYes)
	return cmd
}

// huhConfirm renders a confirm form; an aborted form counts as "no".
func huhConfirm(cmd *cobra.Command, title string) (bool, error) {
	value := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative(messages.ConfirmAffirmative).
			Negative(messages.ConfirmNegative).
			Value(&value),
	)).WithInput(cmd.InOrStdin()).WithOutput(cmd.ErrOrStderr())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return value, nil
}
