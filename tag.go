package git

import (
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"golang.org/x/xerrors"
)

// Tag creates a new tag named name pointing at target (HEAD if empty).
// A lightweight tag is a plain reference; an annotated tag additionally
// writes a Tag object carrying message and the configured signature.
func (r *Repository) Tag(name, target string, annotated bool, message string) (githash.Oid, error) {
	if target == "" {
		target = ginternals.Head
	}
	targetOid, err := r.Find(target, 0, false)
	if err != nil {
		return githash.NullOid, xerrors.Errorf("could not resolve %s: %w", target, err)
	}

	refOid := targetOid
	if annotated {
		targetObj, err := r.backend.Object(targetOid)
		if err != nil {
			return githash.NullOid, xerrors.Errorf("could not read %s: %w", targetOid.String(), err)
		}
		tag := object.NewTag(&object.TagParams{
			Target:  targetObj,
			Name:    name,
			Tagger:  r.userFromConfig(),
			Message: message,
		})
		refOid, err = r.backend.WriteObject(tag.ToObject())
		if err != nil {
			return githash.NullOid, xerrors.Errorf("could not write tag object: %w", err)
		}
	}

	ref := ginternals.NewReference(ginternals.LocalTagFullName(name), refOid)
	if err := r.backend.WriteReferenceSafe(ref); err != nil {
		return githash.NullOid, xerrors.Errorf("tag '%s' already exists: %w", name, err)
	}
	return refOid, nil
}

// ListTags returns every local tag's short name, sorted
func (r *Repository) ListTags() ([]string, error) {
	var names []string
	err := r.backend.WalkReferences(func(ref *ginternals.Reference) error {
		if !isTagRef(ref.Name()) {
			return nil
		}
		names = append(names, ginternals.LocalTagShortName(ref.Name()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func isTagRef(name string) bool {
	return len(name) > len("refs/tags/") && name[:len("refs/tags/")] == "refs/tags/"
}
