// Package index implements the binary v2 staging index: the flat list of
// tracked paths, their stat cache, and their blob oid, that sits between
// the working tree and the object database.
package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/githash"
	"golang.org/x/xerrors"
)

// ErrIndexInvalid is returned when the index file's header or an entry
// doesn't match the expected v2 layout
var ErrIndexInvalid = errors.New("invalid index data")

// signature is the 4-byte magic every index file starts with
var signature = [4]byte{'D', 'I', 'R', 'C'}

// Version is the only index format version this package reads and writes
const Version = 2

// Mode-type values an entry's mode field may carry, matching the high 4
// bits of the on-disk mode u16 (mode_type<<12 | mode_perms)
const (
	ModeTypeRegular = 0b1000
	ModeTypeSymlink = 0b1010
	ModeTypeGitlink = 0b1110
)

// entryHeaderLength is the size, in bytes, of an entry's fixed-width
// portion (everything before the name and its NUL/padding)
const entryHeaderLength = 62

// flag bits packed into an entry's 2-byte flags field
const (
	flagAssumeValid = 1 << 15
	flagExtended    = 1 << 14
	flagStageMask   = 0x3000
	flagStageShift  = 12
	flagNameMask    = 0x0fff
	flagNameOverflow = 0x0fff
)

// Entry represents a single tracked path in the index: its stat cache
// and the oid of the blob it was last staged as.
//
// Field names mirror go-git's plumbing/format/index.Entry where the
// concepts overlap (CreatedAt/ModifiedAt/Dev/Inode/UID/GID/Size/Stage);
// ModeType/ModePerms are kept split to match the wire format exactly,
// which only a 0..3 stage and the {regular,symlink,gitlink} mode_type
// subset this specification calls for.
type Entry struct {
	CreatedAt  time.Time
	ModifiedAt time.Time
	Dev        uint32
	Inode      uint32
	ModeType   uint16
	ModePerms  uint16
	UID        uint32
	GID        uint32
	Size       uint32
	Oid        githash.Oid
	AssumeValid bool
	Stage      uint8
	Name       string
}

// Index models the staging area: a version and a list of entries, kept
// sorted ascending by name after every mutation.
type Index struct {
	Version uint32
	Entries []*Entry
}

// New returns an empty v2 index
func New() *Index {
	return &Index{Version: Version}
}

// Entry returns the entry for the given path, if tracked
func (idx *Index) Entry(name string) (*Entry, bool) {
	for _, e := range idx.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Add inserts e, replacing any existing entry with the same name, and
// keeps Entries sorted by name
func (idx *Index) Add(e *Entry) {
	for i, existing := range idx.Entries {
		if existing.Name == e.Name {
			idx.Entries[i] = e
			return
		}
	}
	idx.Entries = append(idx.Entries, e)
	sort.Slice(idx.Entries, func(i, j int) bool {
		return idx.Entries[i].Name < idx.Entries[j].Name
	})
}

// Remove drops the entry matching name, if any, and reports whether one
// was found
func (idx *Index) Remove(name string) bool {
	for i, e := range idx.Entries {
		if e.Name == name {
			idx.Entries = append(idx.Entries[:i], idx.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Decode reads a whole index file from r. An empty file decodes to an
// empty, version-2 index.
func Decode(r io.Reader) (*Index, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("could not read index: %w", err)
	}
	if len(buf) == 0 {
		return New(), nil
	}
	if len(buf) < 12 {
		return nil, xerrors.Errorf("index header truncated: %w", ErrIndexInvalid)
	}
	if !bytes.Equal(buf[0:4], signature[:]) {
		return nil, xerrors.Errorf("bad index signature: %w", ErrIndexInvalid)
	}

	version := binary.BigEndian.Uint32(buf[4:8])
	if version != Version {
		return nil, xerrors.Errorf("index version %d: %w", version, ginternals.ErrUnsupportedVersion)
	}
	count := binary.BigEndian.Uint32(buf[8:12])

	idx := &Index{Version: version}
	offset := 12
	for i := uint32(0); i < count; i++ {
		e, consumed, err := decodeEntry(buf[offset:])
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %w", i, err)
		}
		idx.Entries = append(idx.Entries, e)
		offset += consumed
	}
	return idx, nil
}

func decodeEntry(buf []byte) (*Entry, int, error) {
	if len(buf) < entryHeaderLength+1 {
		return nil, 0, xerrors.Errorf("entry header truncated: %w", ErrIndexInvalid)
	}

	e := &Entry{}
	ctimeS := binary.BigEndian.Uint32(buf[0:4])
	ctimeNs := binary.BigEndian.Uint32(buf[4:8])
	mtimeS := binary.BigEndian.Uint32(buf[8:12])
	mtimeNs := binary.BigEndian.Uint32(buf[12:16])
	e.CreatedAt = time.Unix(int64(ctimeS), int64(ctimeNs))
	e.ModifiedAt = time.Unix(int64(mtimeS), int64(mtimeNs))
	e.Dev = binary.BigEndian.Uint32(buf[16:20])
	e.Inode = binary.BigEndian.Uint32(buf[20:24])
	// buf[24:26] is the unused high half of the mode field
	mode := binary.BigEndian.Uint16(buf[26:28])
	e.ModeType = mode >> 12
	e.ModePerms = mode & 0x01ff
	if !isValidModeType(e.ModeType) {
		return nil, 0, xerrors.Errorf("mode type %o: %w", e.ModeType, ginternals.ErrBadMode)
	}
	e.UID = binary.BigEndian.Uint32(buf[28:32])
	e.GID = binary.BigEndian.Uint32(buf[32:36])
	e.Size = binary.BigEndian.Uint32(buf[36:40])

	oid, err := githash.FromBytes(buf[40:60])
	if err != nil {
		return nil, 0, xerrors.Errorf("could not parse entry oid: %w", err)
	}
	e.Oid = oid

	flags := binary.BigEndian.Uint16(buf[60:62])
	e.AssumeValid = flags&flagAssumeValid != 0
	e.Stage = uint8((flags & flagStageMask) >> flagStageShift)

	nameLen := int(flags & flagNameMask)
	nameStart := entryHeaderLength
	var name []byte
	if nameLen == flagNameOverflow {
		nulIdx := bytes.IndexByte(buf[nameStart:], 0)
		if nulIdx < 0 {
			return nil, 0, xerrors.Errorf("entry name not NUL-terminated: %w", ErrIndexInvalid)
		}
		name = buf[nameStart : nameStart+nulIdx]
	} else {
		if nameStart+nameLen > len(buf) {
			return nil, 0, xerrors.Errorf("entry name truncated: %w", ErrIndexInvalid)
		}
		name = buf[nameStart : nameStart+nameLen]
	}
	e.Name = string(name)

	consumed := nameStart + len(name) + 1 // +1 for the NUL
	// pad to a multiple of 8, with at least 1 byte of padding already
	// accounted for by the NUL above
	if pad := consumed % 8; pad != 0 {
		consumed += 8 - pad
	}
	return e, consumed, nil
}

// Encode writes idx to w in the binary v2 format, with Entries emitted
// in their current order (callers must keep them sorted by name — Add
// does this automatically)
func (idx *Index) Encode(w io.Writer) error {
	buf := new(bytes.Buffer)
	buf.Write(signature[:])
	writeU32(buf, Version)
	writeU32(buf, uint32(len(idx.Entries)))

	for _, e := range idx.Entries {
		if !isValidModeType(e.ModeType) {
			return xerrors.Errorf("mode type %o: %w", e.ModeType, ginternals.ErrBadMode)
		}
		encodeEntry(buf, e)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return xerrors.Errorf("could not write index: %w", err)
	}
	return nil
}

func encodeEntry(buf *bytes.Buffer, e *Entry) {
	start := buf.Len()

	writeU32(buf, uint32(e.CreatedAt.Unix()))
	writeU32(buf, uint32(e.CreatedAt.Nanosecond()))
	writeU32(buf, uint32(e.ModifiedAt.Unix()))
	writeU32(buf, uint32(e.ModifiedAt.Nanosecond()))
	writeU32(buf, e.Dev)
	writeU32(buf, e.Inode)
	writeU16(buf, 0) // unused half of the mode field
	writeU16(buf, e.ModeType<<12|e.ModePerms&0x01ff)
	writeU32(buf, e.UID)
	writeU32(buf, e.GID)
	writeU32(buf, e.Size)
	buf.Write(e.Oid.Bytes())

	nameLen := len(e.Name)
	flagNameLen := nameLen
	if flagNameLen > flagNameOverflow {
		flagNameLen = flagNameOverflow
	}
	var flags uint16
	if e.AssumeValid {
		flags |= flagAssumeValid
	}
	flags |= uint16(e.Stage&0x3) << flagStageShift
	flags |= uint16(flagNameLen)
	writeU16(buf, flags)

	buf.WriteString(e.Name)
	buf.WriteByte(0)

	written := buf.Len() - start
	if pad := written % 8; pad != 0 {
		buf.Write(make([]byte, 8-pad))
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func isValidModeType(m uint16) bool {
	switch m {
	case ModeTypeRegular, ModeTypeSymlink, ModeTypeGitlink:
		return true
	default:
		return false
	}
}
