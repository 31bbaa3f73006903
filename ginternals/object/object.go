// Package object contains the four git object kinds (Blob, Commit, Tag,
// Tree) and the framing/compression shared by all of them.
package object

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bokuyemskyy/mgit/githash"
	"github.com/bokuyemskyy/mgit/internal/errutil"
	"golang.org/x/xerrors"
)

var (
	// ErrObjectUnknown represents an error thrown when encountering an
	// unknown object type
	ErrObjectUnknown = errors.New("invalid object type")

	// ErrObjectInvalid represents an error thrown when an object contains
	// unexpected data, or when the wrong object kind is provided to a
	// method expecting another kind
	ErrObjectInvalid = errors.New("invalid object")

	// ErrTreeInvalid represents an error thrown when parsing an invalid
	// tree object
	ErrTreeInvalid = errors.New("invalid tree")

	// ErrCommitInvalid represents an error thrown when parsing an invalid
	// commit object
	ErrCommitInvalid = errors.New("invalid commit")

	// ErrTagInvalid represents an error thrown when parsing an invalid
	// tag object
	ErrTagInvalid = errors.New("invalid tag")
)

// Type represents the kind of a git object
type Type int8

// List of all the possible object types
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
	TypeTag    Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	default:
		panic(fmt.Sprintf("unknown object type %d", t))
	}
}

// IsValid checks if the object type is a known type
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns a Type from its string representation
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return 0, ErrObjectUnknown
	}
}

// Object represents a git object. An object can be of multiple kinds but
// they all share the same on-disk framing: `<type> <size>\0<content>`,
// zlib-compressed, stored at objects/<2-char-prefix>/<38-char-rest>.
// https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
type Object struct {
	id      githash.Oid
	typ     Type
	content []byte

	idProcessing sync.Once
}

// New creates a new git object of the given type from its raw content
func New(typ Type, content []byte) *Object {
	o := &Object{
		typ:     typ,
		content: content,
	}
	o.id, _ = o.build()
	return o
}

// ID returns the Oid of the object
func (o *Object) ID() githash.Oid {
	o.idProcessing.Do(func() {
		o.id, _ = o.build()
	})
	return o.id
}

// Size returns the size of the object's content, in bytes
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the Type of the object
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's raw content (without framing)
func (o *Object) Bytes() []byte {
	return o.content
}

// build returns the object's Oid and its framed bytes
// (`<type> <size>\0<content>`)
func (o *Object) build() (oid githash.Oid, data []byte) {
	w := new(bytes.Buffer)
	w.WriteString(o.Type().String())
	w.WriteRune(' ')
	w.WriteString(strconv.Itoa(o.Size()))
	w.WriteByte(0)
	w.Write(o.Bytes())

	data = w.Bytes()
	oid = githash.Sum(data)
	return oid, data
}

// Compress returns the object's framed bytes, zlib-compressed: this is
// the exact byte sequence written to a loose object file.
func (o *Object) Compress() (data []byte, err error) {
	_, framed := o.build()

	compressed := new(bytes.Buffer)
	zw := zlib.NewWriter(compressed)
	defer errutil.Close(zw, &err)

	if _, err = zw.Write(framed); err != nil {
		return nil, xerrors.Errorf("could not zlib-compress the object: %w", err)
	}
	return compressed.Bytes(), nil
}

// AsBlob parses the object as a Blob
func (o *Object) AsBlob() *Blob {
	return NewBlobFromObject(o)
}

// AsTree parses the object as a Tree
func (o *Object) AsTree() (*Tree, error) {
	if o.typ != TypeTree {
		return nil, xerrors.Errorf("type %s is not a tree: %w", o.typ, ErrObjectInvalid)
	}
	return newTreeFromObject(o)
}

// AsCommit parses the object as a Commit
func (o *Object) AsCommit() (*Commit, error) {
	if o.typ != TypeCommit {
		return nil, xerrors.Errorf("type %s is not a commit: %w", o.typ, ErrObjectInvalid)
	}
	return newCommitFromObject(o)
}

// AsTag parses the object as a Tag
func (o *Object) AsTag() (*Tag, error) {
	if o.typ != TypeTag {
		return nil, xerrors.Errorf("type %s is not a tag: %w", o.typ, ErrObjectInvalid)
	}
	return newTagFromObject(o)
}
