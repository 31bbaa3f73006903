package index

import (
	"bytes"
	"testing"
	"time"

	"github.com/bokuyemskyy/mgit/githash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(t *testing.T, name string) *Entry {
	t.Helper()
	oid := githash.Sum([]byte(name))
	return &Entry{
		CreatedAt:  time.Unix(1700000000, 0),
		ModifiedAt: time.Unix(1700000000, 0),
		ModeType:   ModeTypeRegular,
		ModePerms:  0o644,
		Size:       uint32(len(name)),
		Oid:        oid,
		Name:       name,
	}
}

func TestIndexAddAndEntry(t *testing.T) {
	t.Parallel()

	idx := New()
	assert.Equal(t, uint32(Version), idx.Version)

	idx.Add(newEntry(t, "b.txt"))
	idx.Add(newEntry(t, "a.txt"))

	require.Len(t, idx.Entries, 2)
	assert.Equal(t, "a.txt", idx.Entries[0].Name, "entries should stay sorted by name")
	assert.Equal(t, "b.txt", idx.Entries[1].Name)

	e, ok := idx.Entry("a.txt")
	require.True(t, ok)
	assert.Equal(t, "a.txt", e.Name)

	_, ok = idx.Entry("missing")
	assert.False(t, ok)
}

func TestIndexAddReplacesExisting(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Add(newEntry(t, "a.txt"))

	replacement := newEntry(t, "a.txt")
	replacement.Size = 999
	idx.Add(replacement)

	require.Len(t, idx.Entries, 1)
	assert.Equal(t, uint32(999), idx.Entries[0].Size)
}

func TestIndexRemove(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Add(newEntry(t, "a.txt"))

	assert.True(t, idx.Remove("a.txt"))
	assert.Empty(t, idx.Entries)
	assert.False(t, idx.Remove("a.txt"), "removing twice should report not-found")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Add(newEntry(t, "dir/b.txt"))
	idx.Add(newEntry(t, "a.txt"))
	idx.Entries[0].AssumeValid = true

	buf := &bytes.Buffer{}
	require.NoError(t, idx.Encode(buf))

	decoded, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, decoded.Entries, 2)

	for i, e := range idx.Entries {
		got := decoded.Entries[i]
		assert.Equal(t, e.Name, got.Name)
		assert.Equal(t, e.Oid, got.Oid)
		assert.Equal(t, e.ModeType, got.ModeType)
		assert.Equal(t, e.ModePerms, got.ModePerms)
		assert.Equal(t, e.Size, got.Size)
		assert.Equal(t, e.AssumeValid, got.AssumeValid)
		assert.Equal(t, e.CreatedAt.Unix(), got.CreatedAt.Unix())
		assert.Equal(t, e.ModifiedAt.Unix(), got.ModifiedAt.Unix())
	}
}

func TestDecodeEmptyIsEmptyIndex(t *testing.T) {
	t.Parallel()

	idx, err := Decode(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, idx.Entries)
	assert.Equal(t, uint32(Version), idx.Version)
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	buf.WriteString("XXXX")
	writeU32(buf, Version)
	writeU32(buf, 0)

	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrIndexInvalid)
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	t.Parallel()

	_, err := Decode(bytes.NewReader([]byte{'D', 'I', 'R'}))
	require.ErrorIs(t, err, ErrIndexInvalid)
}

func TestLongNameUsesNulTermination(t *testing.T) {
	t.Parallel()

	longName := ""
	for i := 0; i < 5000; i++ {
		longName += "a"
	}

	idx := New()
	idx.Add(newEntry(t, longName))

	buf := &bytes.Buffer{}
	require.NoError(t, idx.Encode(buf))

	decoded, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, decoded.Entries, 1)
	assert.Equal(t, longName, decoded.Entries[0].Name)
}
