package main

import (
	"fmt"

	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newRevParseCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rev-parse <name>",
		Short: "Pick out and massage parameters",
		Args:  cobra.ExactArgs(1),
	}

	typ := cmd.Flags().String("type", "", "Require the revision resolves to the given object type (commit, tree, blob, tag).")

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		var wantType object.Type
		if *typ != "" {
			wantType, err = object.NewTypeFromString(*typ)
			if err != nil {
				return xerrors.Errorf("%s: %w", *typ, err)
			}
		}

		oid, err := r.RevParse(args[0], wantType)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), oid.String())
		return nil
	}

	return cmd
}
