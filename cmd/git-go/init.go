package main

import (
	"io"
	"os"
	"path/filepath"

	git "github.com/bokuyemskyy/mgit"
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/internal/gitpath"
	"github.com/spf13/cobra"
)

// initCmdFlags represents the flags accepted by the init command
//
// Reference: https://git-scm.com/docs/git-init#_options
type initCmdFlags struct {
	initialBranch string
	bare          bool
	quiet         bool
}

func newInitCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "init a new git repository",
		Long:  "This command creates an empty Git repository - basically a .git directory with subdirectories for objects, refs/heads, refs/tags, and template files. An initial branch without any commits will be created (see the --initial-branch option below for its name).",
		Args:  cobra.MaximumNArgs(1),
	}

	f := initCmdFlags{}
	cmd.Flags().StringVarP(&f.initialBranch, "initial-branch", "b", "", "Use the specified name for the initial branch in the newly created repository.")
	cmd.Flags().BoolVar(&f.bare, "bare", false, "Create a bare repository.")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Only print error and warning messages; all other output will be suppressed.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		directory := cfg.C.String()
		if len(args) > 0 {
			directory = args[0]
		}
		return initCmd(cmd.OutOrStdout(), f, directory)
	}

	return cmd
}

func initCmd(out io.Writer, f initCmdFlags, directory string) error {
	_, err := os.Stat(filepath.Join(directory, gitpath.DotGitPath, gitpath.HEADPath))
	newRepo := err != nil

	r, err := git.InitWithOptions(directory, git.InitOptions{
		IsBare:            f.bare,
		InitialBranchName: f.initialBranch,
	})
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck // nothing actionable to do with a close error here

	gitDir := ginternals.DotGitPath(r.Config())
	if newRepo {
		fprintln(f.quiet, out, "Initialized empty Git repository in", gitDir)
	} else {
		fprintln(f.quiet, out, "Reinitialized existing Git repository in", gitDir)
	}

	return nil
}
