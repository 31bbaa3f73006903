package main

import (
	"fmt"

	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
)

func newShowRefCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-ref",
		Short: "List references in a local repository",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		refs, err := r.ListRefs()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, ref := range refs {
			fmt.Fprintf(out, "%s %s\n", ref.Oid.String(), ref.Name)
		}
		return nil
	}

	return cmd
}
