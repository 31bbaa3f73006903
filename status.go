package git

import (
	"path/filepath"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// EntryStatus is one changed path and the kind of change observed
type EntryStatus struct {
	Path   string
	Status string // "added", "modified", "deleted"
}

// StatusReport summarizes the repository's current state: the branch
// HEAD points at (or, when Detached is set, the oid HEAD holds), the
// differences between HEAD's
// tree and the index, the differences between the index and the
// worktree, and the untracked files not covered by ignore rules.
type StatusReport struct {
	Branch          string
	Detached        bool
	StagedChanges   []EntryStatus
	UnstagedChanges []EntryStatus
	Untracked       []string
}

// Status computes the repository's current status
func (r *Repository) Status() (*StatusReport, error) {
	report := &StatusReport{}

	head, err := r.backend.ReferenceShallow(ginternals.Head)
	if err != nil {
		return nil, xerrors.Errorf("could not read HEAD: %w", err)
	}
	if head.Type() == ginternals.SymbolicReference {
		report.Branch = ginternals.LocalBranchShortName(head.SymbolicTarget())
	} else {
		report.Branch = head.Target().String()
		report.Detached = true
	}

	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}

	headBlobs, err := r.headBlobPaths()
	if err != nil {
		return nil, err
	}

	indexed := make(map[string]githash.Oid, len(idx.Entries))
	for _, e := range idx.Entries {
		indexed[e.Name] = e.Oid
	}

	for name, oid := range indexed {
		if headOid, tracked := headBlobs[name]; !tracked {
			report.StagedChanges = append(report.StagedChanges, EntryStatus{Path: name, Status: "added"})
		} else if headOid != oid {
			report.StagedChanges = append(report.StagedChanges, EntryStatus{Path: name, Status: "modified"})
		}
	}
	for name := range headBlobs {
		if _, ok := indexed[name]; !ok {
			report.StagedChanges = append(report.StagedChanges, EntryStatus{Path: name, Status: "deleted"})
		}
	}

	for _, e := range idx.Entries {
		changed, err := r.workTreeChanged(e)
		if err != nil {
			return nil, err
		}
		if changed {
			report.UnstagedChanges = append(report.UnstagedChanges, EntryStatus{Path: e.Name, Status: "modified"})
		}
	}

	matcher, err := r.ignoreMatcher(idx)
	if err != nil {
		return nil, err
	}
	files, err := r.collectFiles(".")
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		if _, tracked := indexed[rel]; tracked {
			continue
		}
		if matcher.Match(rel) {
			continue
		}
		report.Untracked = append(report.Untracked, rel)
	}

	return report, nil
}

// headBlobPaths flattens HEAD's tree (if any) into a path → blob oid map
func (r *Repository) headBlobPaths() (map[string]githash.Oid, error) {
	oid, err := r.Find(ginternals.Head, object.TypeTree, true)
	if err != nil {
		if xerrors.Is(err, ginternals.ErrObjectNotFound) || xerrors.Is(err, ginternals.ErrRefNotFound) {
			return map[string]githash.Oid{}, nil
		}
		return nil, xerrors.Errorf("could not resolve HEAD's tree: %w", err)
	}

	out := map[string]githash.Oid{}
	if err := r.flattenTree(oid, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) flattenTree(oid githash.Oid, prefix string, out map[string]githash.Oid) error {
	o, err := r.backend.Object(oid)
	if err != nil {
		return xerrors.Errorf("could not read tree %s: %w", oid.String(), err)
	}
	tree, err := o.AsTree()
	if err != nil {
		return err
	}

	for _, e := range tree.Entries() {
		name := e.Path
		if prefix != "" {
			name = prefix + "/" + name
		}
		if e.Mode == object.ModeDirectory {
			if err := r.flattenTree(e.ID, name, out); err != nil {
				return err
			}
			continue
		}
		out[name] = e.ID
	}
	return nil
}

// workTreeChanged reports whether e's worktree file differs from what
// was staged: first by comparing the cached stat times, then by
// re-hashing the file's current content if those differ.
func (r *Repository) workTreeChanged(e *index.Entry) (bool, error) {
	abs := filepath.Join(r.cfg.WorkTreePath, filepath.FromSlash(e.Name))
	info, err := r.cfg.FS.Stat(abs)
	if err != nil {
		return true, nil // missing or unreadable: treat as a worktree change
	}
	if touchedWithin(info.ModTime(), e.ModifiedAt) {
		return false, nil
	}

	data, err := afero.ReadFile(r.cfg.FS, abs)
	if err != nil {
		return true, nil
	}
	return object.NewBlob(data).ID() != e.Oid, nil
}
