package main

import (
	"fmt"

	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newCheckIgnoreCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-ignore <path>...",
		Short: "Debug gitignore / exclude files",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		results, err := r.CheckIgnore(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range args {
			if results[p] {
				fmt.Fprintln(out, p)
			}
		}
		return nil
	}

	return cmd
}
