package object

import "github.com/bokuyemskyy/mgit/githash"

// Blob represents a blob object: an opaque sequence of bytes used to
// store file content. Blobs carry no filename, mode, or any other
// metadata — that lives in the tree entry pointing at them.
type Blob struct {
	rawObject *Object
}

// NewBlob returns a new Blob object wrapping the given content
func NewBlob(content []byte) *Blob {
	return &Blob{rawObject: New(TypeBlob, content)}
}

// NewBlobFromObject returns a new Blob from a raw git Object
func NewBlobFromObject(o *Object) *Blob {
	return &Blob{rawObject: o}
}

// ID returns the blob's Oid
func (b *Blob) ID() githash.Oid {
	return b.rawObject.ID()
}

// Bytes returns the blob's content
func (b *Blob) Bytes() []byte {
	return b.rawObject.content
}

// BytesCopy returns a copy of the blob's content
func (b *Blob) BytesCopy() []byte {
	out := make([]byte, len(b.rawObject.content))
	copy(out, b.rawObject.content)
	return out
}

// Size returns the size of the blob's content, in bytes
func (b *Blob) Size() int {
	return len(b.rawObject.content)
}

// ToObject returns the Blob's underlying Object
func (b *Blob) ToObject() *Object {
	return b.rawObject
}
