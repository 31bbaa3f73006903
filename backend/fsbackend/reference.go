package fsbackend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bokuyemskyy/mgit/backend"
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Reference returns a stored reference from its name.
// ErrRefNotFound is returned if the reference doesn't exist.
func (b *Backend) Reference(name string) (*ginternals.Reference, error) {
	finder := func(name string) ([]byte, error) {
		data, err := afero.ReadFile(b.fs, b.systemPath(name))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, xerrors.Errorf(`ref "%s": %w`, name, ginternals.ErrRefNotFound)
			}
			return nil, xerrors.Errorf("could not read reference content: %w", err)
		}
		return data, nil
	}
	return ginternals.ResolveReference(name, finder)
}

// ReferenceShallow returns a stored reference from its name, one hop
// only. Unlike Reference, a symbolic reference's target is returned as
// a string without requiring it to exist on disk, so it's what lets
// HEAD be read while pointing at a branch that has no commit yet.
func (b *Backend) ReferenceShallow(name string) (*ginternals.Reference, error) {
	data, err := afero.ReadFile(b.fs, b.systemPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf(`ref "%s": %w`, name, ginternals.ErrRefNotFound)
		}
		return nil, xerrors.Errorf("could not read reference content: %w", err)
	}
	return ginternals.ParseRefContent(name, data)
}

// systemPath returns the on-disk path of a reference, relative to the
// git directory.
// Ex.: on windows refs/heads/main becomes refs\heads\main
func (b *Backend) systemPath(name string) string {
	if os.PathSeparator != '/' {
		name = filepath.FromSlash(name)
	}
	return filepath.Join(ginternals.DotGitPath(b.cfg), name)
}

// WriteReference writes the given reference on disk. If the reference
// already exists it will be overwritten.
func (b *Backend) WriteReference(ref *ginternals.Reference) error {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return ginternals.ErrRefNameInvalid
	}

	var target string
	switch ref.Type() {
	case ginternals.SymbolicReference:
		target = fmt.Sprintf("ref: %s\n", ref.SymbolicTarget())
	case ginternals.OidReference:
		target = fmt.Sprintf("%s\n", ref.Target().String())
	default:
		return xerrors.Errorf("reference type %d: %w", ref.Type(), ginternals.ErrUnknownRefType)
	}

	p := b.systemPath(ref.Name())
	if err := b.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return xerrors.Errorf("could not create directory for reference %s: %w", ref.Name(), err)
	}
	if err := afero.WriteFile(b.fs, p, []byte(target), 0o644); err != nil {
		return xerrors.Errorf("could not persist reference to disk: %w", err)
	}
	return nil
}

// WriteReferenceSafe writes the given reference in the store.
// ErrRefExists is returned if the reference already exists.
func (b *Backend) WriteReferenceSafe(ref *ginternals.Reference) error {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return ginternals.ErrRefNameInvalid
	}

	p := b.systemPath(ref.Name())
	_, err := b.fs.Stat(p)
	if err == nil {
		return ginternals.ErrRefExists
	}
	if !os.IsNotExist(err) {
		return xerrors.Errorf("could not check if reference exists on disk: %w", err)
	}

	return b.WriteReference(ref)
}

// WalkReferences runs f on every reference found under refs/, depth-first
// and sorted by name, matching the order list(prefix="refs") is defined
// to return.
func (b *Backend) WalkReferences(f backend.RefWalkFunc) error {
	tree, err := b.buildRefTree(ginternals.RefsPath(b.cfg))
	if err != nil {
		return err
	}

	err = b.walkRefTree("refs", tree, f)
	if xerrors.Is(err, backend.ErrWalkStop) {
		return nil
	}
	return err
}

// buildRefTree walks the given directory on disk and returns the
// resolved references it contains as a RefTree.
func (b *Backend) buildRefTree(root string) (*ginternals.RefTree, error) {
	tree := ginternals.NewRefTree()

	exists, err := afero.DirExists(b.fs, root)
	if err != nil {
		return nil, xerrors.Errorf("could not check %s: %w", root, err)
	}
	if !exists {
		return tree, nil
	}

	err = afero.Walk(b.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return xerrors.Errorf("could not compute relative ref path for %s: %w", path, relErr)
		}
		rel = filepath.ToSlash(rel)

		ref, refErr := b.Reference(path[len(ginternals.DotGitPath(b.cfg))+1:])
		if refErr != nil {
			return xerrors.Errorf("could not resolve reference at %s: %w", path, refErr)
		}

		tree.Insert(rel, ref.Target())
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not walk %s: %w", root, err)
	}
	return tree, nil
}

// walkRefTree visits every ref in tree depth-first, sorted by name,
// reconstructing full names by prepending prefix
func (b *Backend) walkRefTree(prefix string, tree *ginternals.RefTree, f backend.RefWalkFunc) error {
	for _, name := range tree.SortedRefNames() {
		ref := ginternals.NewReference(prefix+"/"+name, tree.Refs[name])
		if err := f(ref); err != nil {
			return err
		}
	}
	for _, dir := range tree.SortedDirNames() {
		if err := b.walkRefTree(prefix+"/"+dir, tree.Dirs[dir], f); err != nil {
			return err
		}
	}
	return nil
}
