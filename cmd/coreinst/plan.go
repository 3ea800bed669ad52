package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/core-installer/internal/install"
	"github.com/conn-castle/core-installer/internal/messages"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	var manifest string
	var outputJSON bool
	var diffLines int

	cmd := &cobra.Command{
		Use:   messages.PlanUse,
		Short: messages.PlanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, manifest, diffLines)
			if err != nil {
				return err
			}
			defer s.close()

			target, err := s.requireTarget()
			if err != nil {
				return err
			}
			previous, err := s.store.FindPackage(target.Name)
			if err != nil {
				return err
			}
			plan, err := s.installer.Plan(cmd.Context(), target, previous)
			if err != nil {
				return err
			}
			if outputJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(plan)
			}
			return renderPlanText(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", messages.FlagManifest)
	cmd.Flags().BoolVar(&outputJSON, "json", false, messages.PlanFlagJSON)
	cmd.Flags().IntVar(&diffLines, "diff-lines", 0, messages.PlanFlagDiffLines)
	return cmd
}

func renderPlanText(out io.Writer, plan install.UpgradePlan) error {
	if _, err := fmt.Fprintln(out, messages.PlanHeader); err != nil {
		return err
	}
	from := messages.PlanNoRevision
	if plan.FromVersion != "" {
		from = revisionLabel(plan.FromVersion, plan.FromReference)
	}
	if _, err := fmt.Fprintf(out, messages.PlanSummaryFmt, plan.Package, plan.Root, from, revisionLabel(plan.ToVersion, plan.ToReference)); err != nil {
		return err
	}
	if plan.Fresh {
		if _, err := fmt.Fprintln(out, messages.PlanFreshNote); err != nil {
			return err
		}
	}
	if err := writePathSection(out, messages.PlanAdditionsTitle, plan.Additions, color.GreenString); err != nil {
		return err
	}
	if err := writeUpdateSection(out, plan.Updates); err != nil {
		return err
	}
	if err := writePathSection(out, messages.PlanDeletionsTitle, plan.Deletions, color.RedString); err != nil {
		return err
	}
	if err := writePathSection(out, messages.PlanIgnoredTitle, plan.Ignored, fmt.Sprintf); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, messages.PlanUnchangedFmt, plan.Unchanged)
	return err
}

func revisionLabel(version string, reference string) string {
	if reference == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, reference)
}

func writePathSection(out io.Writer, title string, paths []string, paint func(string, ...interface{}) string) error {
	if _, err := fmt.Fprintf(out, "\n%s:\n", title); err != nil {
		return err
	}
	if len(paths) == 0 {
		_, err := fmt.Fprintln(out, messages.PlanNoneLine)
		return err
	}
	for _, path := range paths {
		if _, err := fmt.Fprintln(out, paint(messages.PlanPathLineFmt, path)); err != nil {
			return err
		}
	}
	return nil
}

func writeUpdateSection(out io.Writer, updates []install.DiffPreview) error {
	if _, err := fmt.Fprintf(out, "\n%s:\n", messages.PlanUpdatesTitle); err != nil {
		return err
	}
	if len(updates) == 0 {
		_, err := fmt.Fprintln(out, messages.PlanNoneLine)
		return err
	}
	for _, update := range updates {
		line := fmt.Sprintf(messages.PlanPathLineFmt, update.Path)
		switch {
		case update.Binary:
			line += messages.PlanBinarySuffix
		case update.KindChange:
			line += messages.PlanKindChangeSuffix
		}
		if _, err := fmt.Fprintln(out, color.YellowString(line)); err != nil {
			return err
		}
		if update.UnifiedDiff != "" {
			if _, err := fmt.Fprint(out, update.UnifiedDiff); err != nil {
				return err
			}
		}
	}
	return nil
}
