package main

import (
	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newCheckoutCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <commit> [path]",
		Short: "Switch branches or restore working tree files",
		Args:  cobra.RangeArgs(1, 2),
	}

	force := cmd.Flags().BoolP("force", "f", false, "Overwrite local changes that conflict with the checkout.")

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		path := ""
		if len(args) == 2 {
			path = args[1]
		}
		return r.Checkout(args[0], path, *force)
	}

	return cmd
}
