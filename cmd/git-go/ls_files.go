package main

import (
	"fmt"

	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newLsFilesCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "Show information about files in the index",
	}

	verbose := cmd.Flags().BoolP("v", "v", false, "Show staged content's mode bits, object name and stage number in the output.")

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		entries, err := r.ListFiles()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range entries {
			if *verbose {
				fmt.Fprintf(out, "%06o %s %d\t%s\n", uint32(e.ModeType)<<12|uint32(e.ModePerms), e.Oid.String(), e.Stage, e.Name)
			} else {
				fmt.Fprintln(out, e.Name)
			}
		}
		return nil
	}

	return cmd
}
