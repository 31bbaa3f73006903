package git

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Rm unstages and, unless cached is set, deletes the given worktree-
// relative paths. recursive allows a directory prefix to match every
// tracked entry beneath it.
func (r *Repository) Rm(paths []string, cached, recursive bool) error {
	idx, err := r.readIndex()
	if err != nil {
		return err
	}

	var toRemove []string
	for _, p := range paths {
		rel, err := r.worktreeRelative(p)
		if err != nil {
			return err
		}

		matched := matchEntries(idx, rel, recursive)
		if len(matched) == 0 {
			return xerrors.Errorf("pathspec '%s' did not match any files", p) //nolint:goerr113 // user-facing message mirrors the canonical tool
		}
		toRemove = append(toRemove, matched...)
	}

	var removedDirs []string
	for _, rel := range toRemove {
		idx.Remove(rel)
		if !cached {
			abs := filepath.Join(r.cfg.WorkTreePath, filepath.FromSlash(rel))
			if err := r.cfg.FS.Remove(abs); err != nil {
				return xerrors.Errorf("could not remove %s: %w", rel, err)
			}
			removedDirs = append(removedDirs, filepath.Dir(abs))
		}
	}

	if !cached && recursive {
		r.pruneEmptyDirs(removedDirs)
	}

	return r.writeIndex(idx)
}

// matchEntries returns every tracked index name equal to rel, or (when
// recursive) nested under it
func matchEntries(idx *index.Index, rel string, recursive bool) []string {
	var matched []string
	for _, e := range idx.Entries {
		if e.Name == rel {
			matched = append(matched, e.Name)
			continue
		}
		if recursive && strings.HasPrefix(e.Name, rel+"/") {
			matched = append(matched, e.Name)
		}
	}
	return matched
}

// worktreeRelative converts a user-given path into one relative to the
// working tree, rejecting anything that escapes it
func (r *Repository) worktreeRelative(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.cfg.WorkTreePath, p)
	}
	rel, err := filepath.Rel(r.cfg.WorkTreePath, abs)
	if err != nil {
		return "", xerrors.Errorf("could not compute relative path for %s: %w", p, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", xerrors.Errorf("%s: %w", p, ginternals.ErrPathOutsideWorktree)
	}
	return filepath.ToSlash(rel), nil
}

// pruneEmptyDirs removes every directory in dirs (and any of its now-
// empty ancestors, up to the worktree root) left behind by a recursive
// rm, deepest first so a chain of empty parents collapses in one pass
func (r *Repository) pruneEmptyDirs(dirs []string) {
	unique := map[string]struct{}{}
	for _, d := range dirs {
		unique[d] = struct{}{}
	}
	ordered := make([]string, 0, len(unique))
	for d := range unique {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	for _, dir := range ordered {
		for dir != r.cfg.WorkTreePath && dir != "." && dir != string(filepath.Separator) {
			entries, err := afero.ReadDir(r.cfg.FS, dir)
			if err != nil || len(entries) > 0 {
				break
			}
			if err := r.cfg.FS.Remove(dir); err != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}
