package main

import (
	"fmt"
	"io"

	git "github.com/bokuyemskyy/mgit"
)

func loadRepository(cfg *flags) (*git.Repository, error) {
	r, err := git.OpenWithOptions(cfg.C.String(), git.OpenOptions{})
	if err != nil {
		return nil, fmt.Errorf("could not open repository: %w", err)
	}
	return r, nil
}

func fprintln(quiet bool, out io.Writer, msg ...interface{}) {
	if !quiet {
		fmt.Fprintln(out, msg...)
	}
}
