package git

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bokuyemskyy/mgit/backend"
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
)

// treeNode is an in-memory directory used while folding the flat staging
// index into git's nested tree-of-trees. A leaf maps directly to an
// index entry (a blob, symlink, or gitlink); an intermediate node maps
// to its own children.
type treeNode struct {
	leaf     *index.Entry
	children map[string]*treeNode
}

// buildTreeFromIndex converts idx's flat, already-sorted list of paths
// into the nested tree of Tree objects git stores on disk, writing every
// level and returning the root tree's oid. Blobs referenced by idx must
// already be present in b.
//
// fileModeEnabled mirrors core.filemode: when disabled, every regular
// file is written with mode 100644 regardless of its on-disk executable
// bit, matching what git itself does on filesystems that don't track
// permissions reliably.
func buildTreeFromIndex(b backend.Backend, idx *index.Index, fileModeEnabled bool) (githash.Oid, error) {
	root := &treeNode{children: map[string]*treeNode{}}

	for _, e := range idx.Entries {
		parts := strings.Split(e.Name, "/")
		node := root
		for i, part := range parts {
			if i == len(parts)-1 {
				if existing, ok := node.children[part]; ok && existing.children != nil {
					return githash.NullOid, fmt.Errorf("%q: %w", e.Name, ginternals.ErrPathConflict)
				}
				node.children[part] = &treeNode{leaf: e}
				continue
			}

			child, ok := node.children[part]
			switch {
			case !ok:
				child = &treeNode{children: map[string]*treeNode{}}
				node.children[part] = child
			case child.children == nil:
				return githash.NullOid, fmt.Errorf("%q: %w", e.Name, ginternals.ErrPathConflict)
			}
			node = child
		}
	}

	return writeTreeNode(b, root, fileModeEnabled)
}

// writeTreeNode recursively writes node's children bottom-up and returns
// the oid of the Tree object representing node itself
func writeTreeNode(b backend.Backend, node *treeNode, fileModeEnabled bool) (githash.Oid, error) {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]object.TreeEntry, 0, len(names))
	for _, name := range names {
		child := node.children[name]
		if child.children != nil {
			oid, err := writeTreeNode(b, child, fileModeEnabled)
			if err != nil {
				return githash.NullOid, err
			}
			entries = append(entries, object.TreeEntry{Path: name, ID: oid, Mode: object.ModeDirectory})
			continue
		}

		mode := object.ModeFile
		switch {
		case child.leaf.ModeType == index.ModeTypeSymlink:
			mode = object.ModeSymLink
		case child.leaf.ModeType == index.ModeTypeGitlink:
			mode = object.ModeGitLink
		case fileModeEnabled && child.leaf.ModePerms&0o111 != 0:
			mode = object.ModeExecutable
		}
		entries = append(entries, object.TreeEntry{Path: name, ID: child.leaf.Oid, Mode: mode})
	}

	t := object.NewTree(entries)
	o := t.ToObject()
	if _, err := b.WriteObject(o); err != nil {
		return githash.NullOid, fmt.Errorf("could not write tree: %w", err)
	}
	return o.ID(), nil
}
