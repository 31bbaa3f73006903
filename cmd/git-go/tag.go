package main

import (
	"fmt"

	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newTagCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag [name] [object]",
		Short: "Create or list tags",
		Args:  cobra.RangeArgs(0, 2),
	}

	annotated := cmd.Flags().BoolP("annotate", "a", false, "Make an unsigned, annotated tag object.")
	list := cmd.Flags().BoolP("list", "l", false, "List tags.")
	message := cmd.Flags().StringP("message", "m", "", "Use the given tag message.")

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		out := cmd.OutOrStdout()

		if *list || len(args) == 0 {
			names, err := r.ListTags()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		}

		target := ""
		if len(args) == 2 {
			target = args[1]
		}
		oid, err := r.Tag(args[0], target, *annotated, *message)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, oid.String())
		return nil
	}

	return cmd
}
