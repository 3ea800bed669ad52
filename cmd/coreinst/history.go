package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/store"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   messages.HistoryUse,
		Short: messages.HistoryShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, "", 0)
			if err != nil {
				return err
			}
			defer s.close()

			ops, err := s.store.ListOperations(limit)
			if err != nil {
				return err
			}
			return renderHistory(cmd.OutOrStdout(), ops)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, messages.HistoryFlagLimit)
	return cmd
}

func renderHistory(out io.Writer, ops []store.Operation) error {
	if len(ops) == 0 {
		_, err := fmt.Fprintln(out, messages.HistoryEmpty)
		return err
	}
	for _, op := range ops {
		target := revisionLabel(op.ToVersion, op.ToReference)
		change := target
		if op.FromVersion != "" {
			change = revisionLabel(op.FromVersion, op.FromReference) + " -> " + target
		}
		line := fmt.Sprintf(messages.HistoryLineFmt,
			op.ID,
			op.StartedAt.Local().Format(time.DateTime),
			op.Kind,
			op.Package,
			change,
			statusLabel(op.Status),
		)
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
		if op.Status == store.OperationFailed {
			if _, err := fmt.Fprintf(out, messages.HistoryFailureFmt, op.FailureStep, op.FailureError); err != nil {
				return err
			}
			if op.ScratchDir != "" && op.FailureStep == "merge" {
				if _, err := fmt.Fprintf(out, messages.HistoryScratchFmt, op.ScratchDir); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func statusLabel(status store.OperationStatus) string {
	switch status {
	case store.OperationApplied:
		return color.GreenString(string(status))
	case store.OperationFailed:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}
