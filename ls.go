package git

import (
	"path"
	"sort"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"golang.org/x/xerrors"
)

// ListFiles returns a copy of the staging index's entries, sorted by
// path (the order the index already stores them in).
func (r *Repository) ListFiles() ([]*index.Entry, error) {
	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	out := make([]*index.Entry, len(idx.Entries))
	copy(out, idx.Entries)
	return out, nil
}

// TreeListEntry is one row of a tree listing: a full path (already
// joined with any parent directory when the listing is recursive) and
// the entry it resolved to.
type TreeListEntry struct {
	Path string
	object.TreeEntry
}

// ListTree resolves name to a tree and returns its entries. When
// recursive is true, subtrees are expanded and their entries reported
// with paths relative to the root tree instead of being listed as a
// single directory entry.
func (r *Repository) ListTree(name string, recursive bool) ([]TreeListEntry, error) {
	oid, err := r.Find(name, object.TypeTree, true)
	if err != nil {
		return nil, xerrors.Errorf("could not resolve %s: %w", name, err)
	}

	var out []TreeListEntry
	if err := r.listTree(oid, "", recursive, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) listTree(oid githash.Oid, prefix string, recursive bool, out *[]TreeListEntry) error {
	o, err := r.backend.Object(oid)
	if err != nil {
		return xerrors.Errorf("could not read tree %s: %w", oid.String(), err)
	}
	tree, err := o.AsTree()
	if err != nil {
		return err
	}

	for _, e := range tree.Entries() {
		full := e.Path
		if prefix != "" {
			full = path.Join(prefix, e.Path)
		}
		if recursive && e.Mode == object.ModeDirectory {
			if err := r.listTree(e.ID, full, recursive, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, TreeListEntry{Path: full, TreeEntry: e})
	}
	return nil
}

// RefEntry is one row of a reference listing
type RefEntry struct {
	Name string
	Oid  githash.Oid
}

// ListRefs returns every reference under refs/, sorted by full name.
func (r *Repository) ListRefs() ([]RefEntry, error) {
	var out []RefEntry
	err := r.backend.WalkReferences(func(ref *ginternals.Reference) error {
		target := ref.Target()
		if ref.Type() == ginternals.SymbolicReference {
			resolved, err := r.Find(ref.Name(), 0, false)
			if err != nil {
				return nil //nolint:nilerr // a dangling symbolic ref is skipped, not fatal to the listing
			}
			target = resolved
		}
		out = append(out, RefEntry{Name: ref.Name(), Oid: target})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
