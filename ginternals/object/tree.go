package object

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/bokuyemskyy/mgit/githash"
	"github.com/bokuyemskyy/mgit/internal/readutil"
	"golang.org/x/xerrors"
)

// TreeObjectMode represents the mode of an entry inside a tree.
// Non-standard modes (like 0o100664) aren't supported.
type TreeObjectMode int32

const (
	// ModeFile represents the mode used for a regular file
	ModeFile TreeObjectMode = 0o100644
	// ModeExecutable represents the mode used for an executable file
	ModeExecutable TreeObjectMode = 0o100755
	// ModeDirectory represents the mode used for a directory
	ModeDirectory TreeObjectMode = 0o040000
	// ModeSymLink represents the mode used for a symbolic link
	ModeSymLink TreeObjectMode = 0o120000
	// ModeGitLink represents the mode used for a gitlink (submodule)
	ModeGitLink TreeObjectMode = 0o160000
)

// IsValid returns whether the mode is a supported mode
func (m TreeObjectMode) IsValid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeDirectory, ModeSymLink, ModeGitLink:
		return true
	default:
		return false
	}
}

// ObjectType returns the object type associated to a mode
func (m TreeObjectMode) ObjectType() Type {
	switch m {
	case ModeDirectory:
		return TypeTree
	case ModeGitLink:
		return TypeCommit
	default:
		// ModeExecutable, ModeFile, ModeSymLink, and anything unexpected
		return TypeBlob
	}
}

// Tree represents a tree object: a sorted list of (mode, path, oid)
// entries, one per direct child of a directory.
type Tree struct {
	rawObject *Object
	// we don't use pointers so entries stay immutable from the outside
	entries []TreeEntry
}

// TreeEntry represents a single entry inside a git tree
type TreeEntry struct {
	Path string
	ID   githash.Oid
	Mode TreeObjectMode
}

// sortKey returns the byte sequence git sorts tree entries by: the raw
// path, except entries whose mode does *not* start with octal "10"
// (i.e. anything but ModeFile/ModeExecutable — directories, symlinks,
// gitlinks) are compared as if a trailing "/" were appended. This makes
// "foo" sort after "foo.c" but a directory, symlink, or submodule named
// "foo" sort before a file "foo.c" would if both were compared as plain
// strings.
func (e TreeEntry) sortKey() string {
	if !strings.HasPrefix(strconv.FormatInt(int64(e.Mode), 8), "10") {
		return e.Path + "/"
	}
	return e.Path
}

// SortTreeEntries sorts entries in place using git's canonical tree
// ordering
func SortTreeEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].sortKey() < entries[j].sortKey()
	})
}

// NewTree returns a new tree with the given entries, canonically sorted
func NewTree(entries []TreeEntry) *Tree {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	SortTreeEntries(sorted)

	t := &Tree{entries: sorted}
	t.rawObject = t.ToObject()
	return t
}

// newTreeFromObject returns a new Tree from a raw object. Callers should
// go through Object.AsTree() rather than calling this directly.
//
// A tree entry has the on-disk format:
//
//	{octal_mode} {path_name}\0{20-byte raw oid}
func newTreeFromObject(o *Object) (*Tree, error) {
	entries := []TreeEntry{}

	objData := o.Bytes()
	offset := 0
	for offset < len(objData) {
		entry := TreeEntry{}

		data := readutil.ReadTo(objData[offset:], ' ')
		if len(data) == 0 {
			return nil, xerrors.Errorf("could not retrieve the mode of entry %d: %w", len(entries)+1, ErrTreeInvalid)
		}
		offset += len(data) + 1 // +1 for the space
		mode, err := strconv.ParseInt(string(data), 8, 32)
		if err != nil {
			return nil, xerrors.Errorf("could not parse mode of entry %d: %w", len(entries)+1, err)
		}
		entry.Mode = TreeObjectMode(mode)

		data = readutil.ReadTo(objData[offset:], 0)
		if len(data) == 0 {
			return nil, xerrors.Errorf("could not retrieve the path of entry %d: %w", len(entries)+1, ErrTreeInvalid)
		}
		offset += len(data) + 1 // +1 for the NUL
		entry.Path = string(data)

		if offset+githash.Size > len(objData) {
			return nil, xerrors.Errorf("not enough bytes left for the oid of entry %d: %w", len(entries)+1, ErrTreeInvalid)
		}
		entry.ID, err = githash.FromBytes(objData[offset : offset+githash.Size])
		if err != nil {
			return nil, xerrors.Errorf("invalid oid for entry %d: %w", len(entries)+1, ErrTreeInvalid)
		}
		offset += githash.Size

		entries = append(entries, entry)
	}

	return &Tree{
		rawObject: o,
		entries:   entries,
	}, nil
}

// Entries returns a copy of the tree's entries, in canonical order
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ID returns the tree object's Oid
func (t *Tree) ID() githash.Oid {
	return t.rawObject.ID()
}

// ToObject returns an Object representing the tree
func (t *Tree) ToObject() *Object {
	if t.rawObject != nil {
		return t.rawObject
	}

	buf := new(bytes.Buffer)
	for _, e := range t.entries {
		buf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		buf.Write(e.ID.Bytes())
	}

	t.rawObject = New(TypeTree, buf.Bytes())
	return t.rawObject
}
