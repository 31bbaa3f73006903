package object

import (
	"strings"

	"github.com/bokuyemskyy/mgit/githash"
	"golang.org/x/xerrors"
)

// TagParams represents all the data needed to create an annotated Tag
type TagParams struct {
	Target    *Object
	Name      string
	Tagger    Signature
	Message   string
	OptGPGSig string
}

// Tag represents an annotated tag object: a pointer at another object
// (usually a commit), a name, a tagger signature, and a free-form
// message. Lightweight tags don't have a Tag object — they're a plain
// reference pointing directly at the target.
type Tag struct {
	rawObject *Object

	tagger  Signature
	tag     string
	message string

	gpgSig string

	target githash.Oid
	typ    Type
}

// NewTag creates a new annotated Tag object
func NewTag(p *TagParams) *Tag {
	return &Tag{
		target:  p.Target.ID(),
		typ:     p.Target.Type(),
		tag:     p.Name,
		tagger:  p.Tagger,
		message: p.Message,
		gpgSig:  p.OptGPGSig,
	}
}

// newTagFromObject creates a Tag from a raw object. Callers should go
// through Object.AsTag() rather than calling this directly.
func newTagFromObject(o *Object) (*Tag, error) {
	kv, err := parseKVLM(o.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("could not parse tag: %w", err)
	}

	tag := &Tag{
		rawObject: o,
		message:   kv.message,
	}

	targetRaw, ok := kv.get("object")
	if !ok {
		return nil, xerrors.Errorf("tag has no target: %w", ErrTagInvalid)
	}
	tag.target, err = githash.FromHex(targetRaw)
	if err != nil {
		return nil, xerrors.Errorf("could not parse target id %q: %w", targetRaw, err)
	}

	typRaw, ok := kv.get("type")
	if !ok {
		return nil, xerrors.Errorf("tag has no type: %w", ErrTagInvalid)
	}
	tag.typ, err = NewTypeFromString(typRaw)
	if err != nil {
		return nil, xerrors.Errorf("invalid object type %q: %w", typRaw, err)
	}

	tag.tag, _ = kv.get("tag")

	taggerRaw, ok := kv.get("tagger")
	if !ok {
		return nil, xerrors.Errorf("tag has no tagger: %w", ErrTagInvalid)
	}
	tag.tagger, err = NewSignatureFromBytes([]byte(taggerRaw))
	if err != nil {
		return nil, xerrors.Errorf("could not parse tagger %q: %w", taggerRaw, err)
	}

	tag.gpgSig, _ = kv.get("gpgsig")

	if tag.tagger.IsZero() {
		return nil, xerrors.Errorf("tag has no tagger: %w", ErrTagInvalid)
	}
	if tag.target.IsZero() {
		return nil, xerrors.Errorf("tag has no target: %w", ErrTagInvalid)
	}
	if !tag.typ.IsValid() {
		return nil, xerrors.Errorf("tag has no valid type: %w", ErrTagInvalid)
	}

	return tag, nil
}

// ID returns the Oid of the tag object
func (t *Tag) ID() githash.Oid {
	return t.rawObject.ID()
}

// Target returns the Oid of the object targeted by the tag
func (t *Tag) Target() githash.Oid {
	return t.target
}

// Type returns the type of the targeted object
func (t *Tag) Type() Type {
	return t.typ
}

// Name returns the tag's name
func (t *Tag) Name() string {
	return t.tag
}

// Tagger returns the Signature of the person that created the tag
func (t *Tag) Tagger() Signature {
	return t.tagger
}

// Message returns the tag's message
func (t *Tag) Message() string {
	return t.message
}

// GPGSig returns the GPG signature of the tag, if any
func (t *Tag) GPGSig() string {
	return t.gpgSig
}

// ToObject returns the underlying Object, building it on first call
func (t *Tag) ToObject() *Object {
	if t.rawObject != nil {
		return t.rawObject
	}

	kv := newKVLM()
	kv.add("object", t.target.String())
	kv.add("type", t.typ.String())
	kv.add("tag", t.tag)
	kv.add("tagger", t.tagger.String())
	if t.gpgSig != "" {
		kv.add("gpgsig", strings.TrimRight(t.gpgSig, "\n"))
	}
	kv.message = t.message

	t.rawObject = New(TypeTag, kv.serialize())
	return t.rawObject
}
