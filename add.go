package git

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Add stages the given worktree-relative paths: each is read (walking
// directories, skipping .git), hashed into a blob, and recorded in the
// index. Paths matched by the ignore rules are skipped.
func (r *Repository) Add(paths []string) error {
	idx, err := r.readIndex()
	if err != nil {
		return err
	}
	matcher, err := r.ignoreMatcher(idx)
	if err != nil {
		return err
	}

	var files []string
	for _, p := range paths {
		found, err := r.collectFiles(p)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}

	for _, rel := range files {
		if matcher.Match(rel) {
			continue
		}
		if err := r.stageFile(idx, rel); err != nil {
			return err
		}
	}

	return r.writeIndex(idx)
}

// collectFiles resolves a user-given path into the list of
// worktree-relative file paths it designates: itself if it's a file, or
// every non-.git file beneath it if it's a directory.
func (r *Repository) collectFiles(p string) ([]string, error) {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.cfg.WorkTreePath, p)
	}
	rel, err := filepath.Rel(r.cfg.WorkTreePath, abs)
	if err != nil {
		return nil, xerrors.Errorf("could not compute relative path for %s: %w", p, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, xerrors.Errorf("%s: %w", p, ginternals.ErrPathOutsideWorktree)
	}

	info, err := r.cfg.FS.Stat(abs)
	if err != nil {
		return nil, xerrors.Errorf("pathspec '%s' did not match any files: %w", p, err)
	}

	if !info.IsDir() {
		return []string{filepath.ToSlash(rel)}, nil
	}

	var files []string
	err = afero.Walk(r.cfg.FS, abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(r.cfg.WorkTreePath, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not walk %s: %w", p, err)
	}
	return files, nil
}

// stageFile reads rel off the working tree, writes it as a blob, and
// inserts or replaces its entry in idx
func (r *Repository) stageFile(idx *index.Index, rel string) error {
	abs := filepath.Join(r.cfg.WorkTreePath, filepath.FromSlash(rel))

	data, err := afero.ReadFile(r.cfg.FS, abs)
	if err != nil {
		return xerrors.Errorf("could not read %s: %w", rel, err)
	}
	info, err := r.cfg.FS.Stat(abs)
	if err != nil {
		return xerrors.Errorf("could not stat %s: %w", rel, err)
	}

	blob := object.NewBlob(data)
	oid, err := r.backend.WriteObject(blob.ToObject())
	if err != nil {
		return xerrors.Errorf("could not write blob for %s: %w", rel, err)
	}

	modeType := uint16(index.ModeTypeRegular)
	if info.Mode()&os.ModeSymlink != 0 {
		modeType = index.ModeTypeSymlink
	}

	mtime := info.ModTime()
	idx.Add(&index.Entry{
		CreatedAt:  mtime,
		ModifiedAt: mtime,
		ModeType:   modeType,
		ModePerms:  uint16(info.Mode().Perm()),
		Size:       uint32(info.Size()),
		Oid:        oid,
		Name:       rel,
	})
	return nil
}

// touchedWithin reports whether two times refer to the same instant at
// second+nanosecond granularity, the precision the index's stat cache
// stores.
func touchedWithin(a, b time.Time) bool {
	return a.Unix() == b.Unix() && a.Nanosecond() == b.Nanosecond()
}
