package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newHashObjectCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "Compute object ID and optionally creates a blob from a file",
		Args:  cobra.ExactArgs(1),
	}

	typ := cmd.Flags().StringP("type", "t", "blob", "Specify the type")
	write := cmd.Flags().BoolP("write", "w", false, "Actually write the object into the object database")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, args[0], *typ, *write)
	}

	return cmd
}

func hashObjectCmd(out io.Writer, cfg *flags, filePath, typ string, write bool) (err error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	objType, err := object.NewTypeFromString(typ)
	if err != nil {
		return xerrors.Errorf("unsupported object type %s: %w", typ, err)
	}

	o := object.New(objType, content)
	switch objType {
	case object.TypeCommit:
		if _, err := o.AsCommit(); err != nil {
			return xerrors.Errorf("invalid commit file: %w", err)
		}
	case object.TypeTree:
		if _, err := o.AsTree(); err != nil {
			return xerrors.Errorf("invalid tree file: %w", err)
		}
	case object.TypeTag:
		if _, err := o.AsTag(); err != nil {
			return xerrors.Errorf("invalid tag file: %w", err)
		}
	case object.TypeBlob:
		// nothing further to validate
	}

	if write {
		r, openErr := loadRepository(cfg)
		if openErr != nil {
			return openErr
		}

		_, writeErr := r.Backend().WriteObject(o)
		closeErr := r.Close()
		switch {
		case writeErr != nil:
			return writeErr
		case closeErr != nil:
			return closeErr
		}
	}

	fmt.Fprintln(out, o.ID().String())
	return nil
}
