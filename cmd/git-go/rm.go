package main

import (
	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newRmCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove files from the working tree and from the index",
		Args:  cobra.MinimumNArgs(1),
	}

	recursive := cmd.Flags().BoolP("r", "r", false, "Allow recursive removal when a leading directory name is given.")
	cached := cmd.Flags().Bool("cached", false, "Only remove the path from the index, leaving the worktree file untouched.")

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		return r.Rm(args, *cached, *recursive)
	}

	return cmd
}
