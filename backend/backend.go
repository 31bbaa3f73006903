// Package backend contains the storage abstraction used to read and
// write repository data (objects and references), and its filesystem
// implementation.
package backend

import (
	"errors"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
)

//go:generate mockgen -package mockbackend -destination ../internal/mocks/mockbackend/backend.go github.com/bokuyemskyy/mgit/backend Backend

// Backend represents an object that can store and retrieve objects and
// references for a single repository
type Backend interface {
	// Close frees any resource held by the backend
	Close() error

	// Init initializes a new repository
	Init() error

	// Reference returns a stored reference from its name, fully
	// resolving any symbolic chain
	Reference(name string) (*ginternals.Reference, error)
	// ReferenceShallow returns a stored reference from its name, one
	// hop only: a symbolic reference's target is returned as-is
	// without requiring it to exist
	ReferenceShallow(name string) (*ginternals.Reference, error)
	// WriteReference writes the given reference to the store. If the
	// reference already exists it is overwritten.
	WriteReference(ref *ginternals.Reference) error
	// WriteReferenceSafe writes the given reference to the store.
	// ErrRefExists is returned if the reference already exists.
	WriteReferenceSafe(ref *ginternals.Reference) error
	// WalkReferences runs the provided method on all the references
	// found under refs/, depth-first and sorted by name
	WalkReferences(f RefWalkFunc) error

	// Object returns the object with the given Oid
	Object(githash.Oid) (*object.Object, error)
	// HasObject returns whether an object exists in the store
	HasObject(githash.Oid) (bool, error)
	// WriteObject adds an object to the store
	WriteObject(*object.Object) (githash.Oid, error)
	// WalkObjectIDs runs the provided method on every loose object id
	WalkObjectIDs(f OidWalkFunc) error
}

// RefWalkFunc represents a function applied to every reference found by
// WalkReferences
type RefWalkFunc = func(ref *ginternals.Reference) error

// OidWalkFunc represents a function applied to every Oid found by
// WalkObjectIDs
type OidWalkFunc = func(oid githash.Oid) error

// ErrWalkStop is a sentinel error used by a RefWalkFunc/OidWalkFunc to
// tell the walk to stop early without that being treated as a failure
var ErrWalkStop = errors.New("stop walking")
