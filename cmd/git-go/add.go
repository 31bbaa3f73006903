package main

import (
	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newAddCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Add file contents to the index",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		return r.Add(args)
	}

	return cmd
}
