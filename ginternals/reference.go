package ginternals

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"github.com/bokuyemskyy/mgit/githash"
	"golang.org/x/xerrors"
)

// Common ref names
const (
	// Head is a reference to the current branch, or to a commit if
	// we're detached
	Head = "HEAD"
	// OrigHead is a backup reference of HEAD set during destructive commands
	// such as rebase, merge, etc. and can be used to revert an operation
	OrigHead = "ORIG_HEAD"
	// MergeHead is a reference to the commit that is being merged
	// into the current branch
	MergeHead = "MERGE_HEAD"
	// CherryPickHead is a reference to the commit that is being
	// cherry-picked
	CherryPickHead = "CHERRY_PICK_HEAD"
	// DefaultBranch correspond to the default branch name used by init
	// when init.defaultBranch isn't set
	DefaultBranch = "main"
)

var (
	// ErrRefNotFound is an error thrown when trying to act on a
	// reference that doesn't exists
	ErrRefNotFound = errors.New("reference not found")

	// ErrRefExists is an error thrown when trying to act on a
	// reference that should not exist, but does
	ErrRefExists = errors.New("reference already exists")

	// ErrRefNameInvalid is an error thrown when the name of a reference
	// is not valid
	ErrRefNameInvalid = errors.New("reference name is not valid")

	// ErrRefInvalid is an error thrown when a reference is not valid
	ErrRefInvalid = errors.New("reference is not valid")

	// ErrUnknownRefType is an error thrown when the type of a reference
	// is unknown
	ErrUnknownRefType = errors.New("unknown reference type")
)

// ReferenceType represents the type of a reference
type ReferenceType int8

const (
	// OidReference represents a reference that targets an Oid
	OidReference ReferenceType = 1
	// SymbolicReference represents a reference that targets another
	// reference
	SymbolicReference ReferenceType = 2
)

// Reference represents a git reference
// https://git-scm.com/book/en/v2/Git-Internals-Git-References
type Reference struct {
	name   string
	target string
	id     githash.Oid
	typ    ReferenceType
}

// RefContent represents a method that returns the content of reference
// This is used so we can do the process here, without depending
// on a specific backend or having circular dependencies
type RefContent func(name string) ([]byte, error)

// ResolveReference resolves symbolic references
func ResolveReference(name string, finder RefContent) (*Reference, error) {
	return resolveRefs(name, finder, map[string]struct{}{})
}

// ParseRefContent parses the raw bytes stored in a reference file into a
// Reference, one hop only: a symbolic ref's target is recorded as-is,
// without requiring it to exist or resolving it any further. This is
// what lets HEAD be read on an unborn branch, where refs/heads/<name>
// doesn't exist yet.
func ParseRefContent(name string, data []byte) (*Reference, error) {
	data = bytes.Trim(data, " \n")

	// we're expecting at the very least 6 char:
	// "ref: " followed by a ref
	if len(data) < 6 {
		return nil, ErrRefInvalid
	}

	if string(data[0:5]) == "ref: " {
		return &Reference{
			typ:    SymbolicReference,
			name:   name,
			target: string(data[5:]),
		}, nil
	}

	oid, err := githash.FromChars(data)
	if err != nil {
		return nil, ErrRefInvalid
	}
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   oid,
	}, nil
}

// resolveRefs resolves references recursively
func resolveRefs(name string, finder RefContent, visited map[string]struct{}) (*Reference, error) {
	// we need to protect ourselves against circular references
	// Ex: refs/heads/master is a ref to refs/heads/a which is a ref to
	// refs/heads/master
	if _, ok := visited[name]; ok {
		return nil, xerrors.Errorf("circular symbolic reference: %w", ErrRefInvalid)
	}
	visited[name] = struct{}{}

	if !IsRefNameValid(name) {
		return nil, xerrors.Errorf(`ref "%s": %w`, name, ErrRefNameInvalid)
	}

	data, err := finder(name)
	if err != nil {
		return nil, err
	}

	shallow, err := ParseRefContent(name, data)
	if err != nil {
		return nil, err
	}
	if shallow.typ == OidReference {
		return shallow, nil
	}

	// if the reference is symbolic, we need to follow to get the target
	ref, err := resolveRefs(shallow.target, finder, visited)
	if err != nil {
		return nil, err
	}
	return &Reference{
		typ:    SymbolicReference,
		name:   name,
		id:     ref.id,
		target: shallow.target,
	}, nil
}

// NewReference return a new Reference object that targets
// an object
func NewReference(name string, target githash.Oid) *Reference {
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   target,
	}
}

// NewSymbolicReference return a new Reference object that targets
// another reference.
// Example HEAD targeting heads/master
func NewSymbolicReference(name, target string) *Reference {
	return &Reference{
		typ:    SymbolicReference,
		name:   name,
		target: target,
	}
}

// Name returns the full name fo the reference:
// example: refs/heads/master
func (ref *Reference) Name() string {
	return ref.name
}

// Target returns the ID targeted by a reference
func (ref *Reference) Target() githash.Oid {
	return ref.id
}

// Type returns the type of a reference
func (ref *Reference) Type() ReferenceType {
	return ref.typ
}

// SymbolicTarget returns the symbolic target of a reference
func (ref *Reference) SymbolicTarget() string {
	return ref.target
}

// IsRefNameValid returns whether the name of a reference is valid or not
// https://stackoverflow.com/a/12093994/382879
func IsRefNameValid(name string) bool {
	// the reference name cannot:
	// - be empty
	// - start by a "/"
	// - end by a "/"
	// - end by .
	if name == "" || name == "/" || name[len(name)-1] == '/' || name[len(name)-1] == '.' {
		return false
	}

	// the reference name cannot contain:
	// - *
	// - ?
	// - ~
	// - :
	// - ^
	// - @{
	// - \
	// - ..
	// - [
	// - a space
	// - an ASCII char below 32 or a DEL (ASCII 127)
	for i, c := range name {
		if c < 32 || c == 127 {
			return false
		}
		if c == '*' || c == '?' || c == '~' || c == '^' {
			return false
		}
		if c == ' ' || c == '[' || c == '\\' || c == ':' {
			return false
		}
		if i < len(name)-1 {
			substr := name[i : i+2]
			if substr == "@{" || substr == ".." {
				return false
			}
		}
	}

	segments := strings.Split(name, "/")
	for _, s := range segments {
		// no segment cannot:
		// - be empty
		// - start by a dot
		// - end by a dot
		// - end by ".lock"
		if s == "" || s[0] == '.' || s[len(s)-1] == '.' || strings.HasSuffix(s, ".lock") {
			return false
		}
	}

	return true
}

// RefTree is the result of listing every reference under a prefix: a
// depth-first, name-sorted directory tree where each leaf maps to its
// resolved Oid and each branch maps to a nested RefTree. It mirrors the
// on-disk layout of refs/, not the flat list a caller might expect.
type RefTree struct {
	// Refs holds the resolved refs that live directly in this directory,
	// keyed by their leaf name (e.g. "main" under refs/heads)
	Refs map[string]githash.Oid
	// Dirs holds the nested subdirectories, keyed by their name
	// (e.g. "heads" and "tags" under refs/)
	Dirs map[string]*RefTree
}

// NewRefTree returns an empty RefTree
func NewRefTree() *RefTree {
	return &RefTree{
		Refs: map[string]githash.Oid{},
		Dirs: map[string]*RefTree{},
	}
}

// Insert adds a resolved ref at the given slash-separated path (relative
// to the tree's own root) to the tree, creating intermediate directories
// as needed
func (t *RefTree) Insert(relPath string, oid githash.Oid) {
	segments := strings.Split(relPath, "/")
	node := t
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node.Dirs[seg]
		if !ok {
			child = NewRefTree()
			node.Dirs[seg] = child
		}
		node = child
	}
	node.Refs[segments[len(segments)-1]] = oid
}

// SortedRefNames returns the leaf names of this directory's direct refs,
// sorted lexicographically, matching the depth-first name-sorted walk
// list(prefix) is defined to perform
func (t *RefTree) SortedRefNames() []string {
	names := make([]string, 0, len(t.Refs))
	for name := range t.Refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedDirNames returns this directory's subdirectory names, sorted
// lexicographically
func (t *RefTree) SortedDirNames() []string {
	names := make([]string, 0, len(t.Dirs))
	for name := range t.Dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
