package object

import (
	"testing"

	"github.com/bokuyemskyy/mgit/githash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeSortsDirectoriesAfterPrefixedFiles(t *testing.T) {
	t.Parallel()

	oid := githash.Sum([]byte("x"))
	tr := NewTree([]TreeEntry{
		{Path: "foo.c", ID: oid, Mode: ModeFile},
		{Path: "foo", ID: oid, Mode: ModeDirectory},
	})

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "foo.c", entries[0].Path, "a directory named \"foo\" sorts as \"foo/\", after \"foo.c\"")
	assert.Equal(t, "foo", entries[1].Path)
}

func TestNewTreeSortsSymlinksLikeDirectories(t *testing.T) {
	t.Parallel()

	oid := githash.Sum([]byte("x"))
	tr := NewTree([]TreeEntry{
		{Path: "foo.c", ID: oid, Mode: ModeFile},
		{Path: "foo", ID: oid, Mode: ModeSymLink},
	})

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "foo.c", entries[0].Path, "a symlink named \"foo\" sorts as \"foo/\", after \"foo.c\"")
	assert.Equal(t, "foo", entries[1].Path)
}

func TestNewTreeSortsGitlinksLikeDirectories(t *testing.T) {
	t.Parallel()

	oid := githash.Sum([]byte("x"))
	tr := NewTree([]TreeEntry{
		{Path: "foo.c", ID: oid, Mode: ModeFile},
		{Path: "foo", ID: oid, Mode: ModeGitLink},
	})

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "foo.c", entries[0].Path)
	assert.Equal(t, "foo", entries[1].Path)
}

func TestNewTreeKeepsPlainFileOrderLexical(t *testing.T) {
	t.Parallel()

	oid := githash.Sum([]byte("x"))
	tr := NewTree([]TreeEntry{
		{Path: "b.txt", ID: oid, Mode: ModeFile},
		{Path: "a.txt", ID: oid, Mode: ModeExecutable},
	})

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Path)
	assert.Equal(t, "b.txt", entries[1].Path)
}

func TestTreeRoundTripsThroughObject(t *testing.T) {
	t.Parallel()

	oid := githash.Sum([]byte("x"))
	tr := NewTree([]TreeEntry{
		{Path: "a.txt", ID: oid, Mode: ModeFile},
		{Path: "dir", ID: oid, Mode: ModeDirectory},
	})

	o := tr.ToObject()
	decoded, err := newTreeFromObject(o)
	require.NoError(t, err)
	assert.Equal(t, tr.Entries(), decoded.Entries())
}
