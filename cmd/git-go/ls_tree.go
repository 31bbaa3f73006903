package main

import (
	"fmt"

	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree <tree>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
	}

	recursive := cmd.Flags().BoolP("r", "r", false, "Recurse into subtrees.")

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		entries, err := r.ListTree(args[0], *recursive)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), e.Path)
		}
		return nil
	}

	return cmd
}
