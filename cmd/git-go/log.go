package main

import (
	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newLogCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log [commit]",
		Short: "Show commit logs",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		start := ""
		if len(args) == 1 {
			start = args[0]
		}
		return r.Log(cmd.OutOrStdout(), start)
	}

	return cmd
}
