package git

import (
	"time"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"golang.org/x/xerrors"
)

// unknownSignature is used when user.name/user.email aren't configured,
// mirroring get_user_from_config's sentinel identity
var unknownSignature = object.Signature{Name: "Unknown", Email: "unknown@example.com"}

// userFromConfig returns the signature to stamp commits and tags with
func (r *Repository) userFromConfig() object.Signature {
	name, email, ok := r.cfg.User()
	if !ok {
		return object.Signature{Name: unknownSignature.Name, Email: unknownSignature.Email, Time: time.Now()}
	}
	return object.Signature{Name: name, Email: email, Time: time.Now()}
}

// Commit builds a tree from the current index, composes a commit on top
// of HEAD (if any), writes it, and moves the current branch (or
// detached HEAD) to point at it.
func (r *Repository) Commit(message string) (githash.Oid, error) {
	idx, err := r.readIndex()
	if err != nil {
		return githash.NullOid, err
	}
	if len(idx.Entries) == 0 {
		return githash.NullOid, ginternals.ErrNothingToCommit
	}

	treeOid, err := buildTreeFromIndex(r.backend, idx, r.cfg.FileModeEnabled())
	if err != nil {
		return githash.NullOid, xerrors.Errorf("could not build tree: %w", err)
	}

	opts := &object.CommitOptions{Message: message}
	if parentOid, err := r.Find(ginternals.Head, 0, false); err == nil {
		opts.ParentsID = []githash.Oid{parentOid}
	} else if !xerrors.Is(err, ginternals.ErrObjectNotFound) && !xerrors.Is(err, ginternals.ErrRefNotFound) {
		return githash.NullOid, xerrors.Errorf("could not resolve HEAD: %w", err)
	}

	author := r.userFromConfig()
	commit := object.NewCommit(treeOid, author, opts)
	oid, err := r.backend.WriteObject(commit.ToObject())
	if err != nil {
		return githash.NullOid, xerrors.Errorf("could not write commit: %w", err)
	}

	if err := r.updateRef(oid); err != nil {
		return githash.NullOid, err
	}
	return oid, nil
}

// updateRef moves the ref HEAD currently points at (or HEAD itself, if
// detached) to oid
func (r *Repository) updateRef(oid githash.Oid) error {
	head, err := r.backend.ReferenceShallow(ginternals.Head)
	if err != nil {
		return xerrors.Errorf("could not read HEAD: %w", err)
	}

	if head.Type() == ginternals.SymbolicReference {
		branch := ginternals.NewReference(head.SymbolicTarget(), oid)
		if err := r.backend.WriteReference(branch); err != nil {
			return xerrors.Errorf("could not update %s: %w", head.SymbolicTarget(), err)
		}
		return nil
	}

	if err := r.backend.WriteReference(ginternals.NewReference(ginternals.Head, oid)); err != nil {
		return xerrors.Errorf("could not update HEAD: %w", err)
	}
	return nil
}
