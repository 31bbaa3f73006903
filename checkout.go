package git

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Checkout materializes the tree of commit into the worktree (or, if
// path is non-empty, into that single subpath), and moves HEAD: to the
// branch named commit if it is one, or detaches it to the resolved oid
// otherwise. Without force, conflicting local modifications abort the
// operation and are reported by name.
func (r *Repository) Checkout(commit, path string, force bool) error {
	oid, err := r.Find(commit, object.TypeCommit, true)
	if err != nil {
		return xerrors.Errorf("could not resolve %s: %w", commit, err)
	}
	treeOid, err := r.peel(oid, object.TypeTree)
	if err != nil {
		return err
	}

	targetBlobs := map[string]githash.Oid{}
	if err := r.flattenTree(treeOid, "", targetBlobs); err != nil {
		return err
	}

	root := r.cfg.WorkTreePath
	if path != "" {
		root = filepath.Join(r.cfg.WorkTreePath, path)
	}

	if !force {
		if conflicts := r.checkoutConflicts(targetBlobs); len(conflicts) > 0 {
			sort.Strings(conflicts)
			return xerrors.Errorf("Your changes to the following files would be overwritten by checkout: %v: %w", conflicts, ginternals.ErrWriteConflict)
		}
	}

	if err := r.materializeTree(treeOid, root); err != nil {
		return err
	}

	if path == "" || path == r.cfg.WorkTreePath {
		if err := r.moveHead(commit, oid); err != nil {
			return err
		}
	}
	return nil
}

// checkoutConflicts compares target's blobs against the current
// worktree content, returning the paths that differ
func (r *Repository) checkoutConflicts(target map[string]githash.Oid) []string {
	var conflicts []string
	for name, oid := range target {
		abs := filepath.Join(r.cfg.WorkTreePath, filepath.FromSlash(name))
		data, err := afero.ReadFile(r.cfg.FS, abs)
		if err != nil {
			continue // file doesn't exist locally: nothing to overwrite
		}
		if object.NewBlob(data).ID() != oid {
			conflicts = append(conflicts, name)
		}
	}
	return conflicts
}

// materializeTree recursively writes tree's content under root,
// creating directories for subtrees and files for blobs
func (r *Repository) materializeTree(treeOid githash.Oid, root string) error {
	o, err := r.backend.Object(treeOid)
	if err != nil {
		return xerrors.Errorf("could not read tree %s: %w", treeOid.String(), err)
	}
	tree, err := o.AsTree()
	if err != nil {
		return err
	}

	if err := r.cfg.FS.MkdirAll(root, 0o750); err != nil {
		return xerrors.Errorf("could not create %s: %w", root, err)
	}

	for _, e := range tree.Entries() {
		dest := filepath.Join(root, e.Path)
		if e.Mode == object.ModeDirectory {
			if err := r.materializeTree(e.ID, dest); err != nil {
				return err
			}
			continue
		}

		blobObj, err := r.backend.Object(e.ID)
		if err != nil {
			return xerrors.Errorf("could not read blob %s: %w", e.ID.String(), err)
		}
		perm := os.FileMode(0o644)
		if e.Mode == object.ModeExecutable {
			perm = 0o755
		}
		if err := afero.WriteFile(r.cfg.FS, dest, blobObj.AsBlob().Bytes(), perm); err != nil {
			return xerrors.Errorf("could not write %s: %w", dest, err)
		}
	}
	return nil
}

// moveHead points HEAD at the branch named commit if it is one,
// otherwise detaches it to oid and emits a notice
func (r *Repository) moveHead(commit string, oid githash.Oid) error {
	branchRef := ginternals.LocalBranchFullName(commit)
	if _, err := r.backend.Reference(branchRef); err == nil {
		head := ginternals.NewSymbolicReference(ginternals.Head, branchRef)
		if err := r.backend.WriteReference(head); err != nil {
			return xerrors.Errorf("could not update HEAD: %w", err)
		}
		return nil
	}

	if err := r.backend.WriteReference(ginternals.NewReference(ginternals.Head, oid)); err != nil {
		return xerrors.Errorf("could not update HEAD: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Note: switching to '%s'.\nYou are in 'detached HEAD' state.\n", commit)
	return nil
}
