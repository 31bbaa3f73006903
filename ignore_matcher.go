package git

import (
	"os"

	"github.com/bokuyemskyy/mgit/env"
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/bokuyemskyy/mgit/ginternals/ignore"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ignoreMatcher builds the ignore.Matcher in effect for the repository's
// current index: info/exclude, the user's global excludes file, and
// every tracked .gitignore blob.
func (r *Repository) ignoreMatcher(idx *index.Index) (*ignore.Matcher, error) {
	infoExclude, err := readOptionalFile(r.cfg.FS, ginternals.InfoExcludePath(r.cfg))
	if err != nil {
		return nil, xerrors.Errorf("could not read info/exclude: %w", err)
	}

	globalExcludes, err := readOptionalFile(r.cfg.FS, ginternals.GlobalExcludesPath(env.NewFromOs()))
	if err != nil {
		return nil, xerrors.Errorf("could not read global excludes: %w", err)
	}

	m, err := ignore.New(infoExclude, globalExcludes, idx, r.backend.Object)
	if err != nil {
		return nil, xerrors.Errorf("could not build ignore rules: %w", err)
	}
	return m, nil
}

func readOptionalFile(fs afero.Fs, p string) ([]byte, error) {
	data, err := afero.ReadFile(fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
