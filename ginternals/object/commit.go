package object

import (
	"strings"

	"github.com/bokuyemskyy/mgit/githash"
	"golang.org/x/xerrors"
)

// CommitOptions represents all the optional data available when creating
// a commit
type CommitOptions struct {
	Message string
	GPGSig  string
	// Committer represents the person creating the commit.
	// If not provided, the author is used as committer.
	Committer Signature
	ParentsID []githash.Oid
}

// Commit represents a commit object: a tree, zero or more parents, an
// author and committer signature, and a free-form message.
type Commit struct {
	rawObject *Object

	author    Signature
	committer Signature

	gpgSig  string
	message string

	parentIDs []githash.Oid
	treeID    githash.Oid
}

// NewCommit creates a new Commit object. Any provided Oids aren't checked
// for existence in the object database.
func NewCommit(treeID githash.Oid, author Signature, opts *CommitOptions) *Commit {
	c := &Commit{
		treeID:    treeID,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
		parentIDs: opts.ParentsID,
		gpgSig:    opts.GPGSig,
	}
	if c.committer.IsZero() {
		c.committer = author
	}
	c.rawObject = c.ToObject()
	return c
}

// newCommitFromObject creates a Commit from a raw object. Callers should
// go through Object.AsCommit() rather than calling this directly.
func newCommitFromObject(o *Object) (*Commit, error) {
	kv, err := parseKVLM(o.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("could not parse commit: %w", err)
	}

	ci := &Commit{
		rawObject: o,
		message:   kv.message,
	}

	treeRaw, ok := kv.get("tree")
	if !ok {
		return nil, xerrors.Errorf("commit has no tree: %w", ErrCommitInvalid)
	}
	ci.treeID, err = githash.FromHex(treeRaw)
	if err != nil {
		return nil, xerrors.Errorf("could not parse tree id %q: %w", treeRaw, err)
	}

	for _, p := range kv.getAll("parent") {
		oid, err := githash.FromHex(p)
		if err != nil {
			return nil, xerrors.Errorf("could not parse parent id %q: %w", p, err)
		}
		ci.parentIDs = append(ci.parentIDs, oid)
	}

	authorRaw, ok := kv.get("author")
	if !ok {
		return nil, xerrors.Errorf("commit has no author: %w", ErrCommitInvalid)
	}
	ci.author, err = NewSignatureFromBytes([]byte(authorRaw))
	if err != nil {
		return nil, xerrors.Errorf("could not parse author signature %q: %w", authorRaw, err)
	}

	if committerRaw, ok := kv.get("committer"); ok {
		ci.committer, err = NewSignatureFromBytes([]byte(committerRaw))
		if err != nil {
			return nil, xerrors.Errorf("could not parse committer signature %q: %w", committerRaw, err)
		}
	}

	ci.gpgSig, _ = kv.get("gpgsig")

	if ci.author.IsZero() {
		return nil, xerrors.Errorf("commit has no author: %w", ErrCommitInvalid)
	}
	if ci.treeID.IsZero() {
		return nil, xerrors.Errorf("commit has no tree: %w", ErrCommitInvalid)
	}

	return ci, nil
}

// ID returns the Oid of the commit object
func (c *Commit) ID() githash.Oid {
	return c.rawObject.ID()
}

// Author returns the Signature of the person that made the changes
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns the Signature of the person that created the commit
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the commit's message
func (c *Commit) Message() string {
	return c.message
}

// ParentIDs returns the Oids of the parent commits, if any.
// - The first commit of an orphan branch has 0 parents.
// - A regular commit has 1 parent.
// - A merge commit has 2 or more parents.
func (c *Commit) ParentIDs() []githash.Oid {
	out := make([]githash.Oid, len(c.parentIDs))
	copy(out, c.parentIDs)
	return out
}

// TreeID returns the Oid of the commit's tree
func (c *Commit) TreeID() githash.Oid {
	return c.treeID
}

// GPGSig returns the GPG signature of the commit, if any
func (c *Commit) GPGSig() string {
	return c.gpgSig
}

// ToObject returns the underlying Object, building it on first call
func (c *Commit) ToObject() *Object {
	if c.rawObject != nil {
		return c.rawObject
	}

	kv := newKVLM()
	kv.add("tree", c.treeID.String())
	for _, p := range c.parentIDs {
		kv.add("parent", p.String())
	}
	kv.add("author", c.author.String())
	kv.add("committer", c.committer.String())
	if c.gpgSig != "" {
		kv.add("gpgsig", strings.TrimRight(c.gpgSig, "\n"))
	}
	kv.message = c.message

	c.rawObject = New(TypeCommit, kv.serialize())
	return c.rawObject
}
