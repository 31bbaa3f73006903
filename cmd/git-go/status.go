package main

import (
	"fmt"

	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newStatusCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		report, err := r.Status()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.Detached {
			fmt.Fprintf(out, "HEAD detached at %s\n", report.Branch)
		} else {
			fmt.Fprintf(out, "On branch %s\n", report.Branch)
		}

		if len(report.StagedChanges) > 0 {
			fmt.Fprintln(out, "\nChanges to be committed:")
			for _, e := range report.StagedChanges {
				fmt.Fprintf(out, "\t%s: %s\n", e.Status, e.Path)
			}
		}
		if len(report.UnstagedChanges) > 0 {
			fmt.Fprintln(out, "\nChanges not staged for commit:")
			for _, e := range report.UnstagedChanges {
				fmt.Fprintf(out, "\t%s: %s\n", e.Status, e.Path)
			}
		}
		if len(report.Untracked) > 0 {
			fmt.Fprintln(out, "\nUntracked files:")
			for _, p := range report.Untracked {
				fmt.Fprintf(out, "\t%s\n", p)
			}
		}
		return nil
	}

	return cmd
}
