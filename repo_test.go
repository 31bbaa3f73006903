package git

import (
	"testing"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	fs := afero.NewMemMapFs()
	r, err := InitWithOptions("/repo", InitOptions{FS: fs})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
	})
	return r
}

func TestInitCreatesHead(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)

	ref, err := r.Backend().ReferenceShallow(ginternals.Head)
	require.NoError(t, err)
	assert.Equal(t, ginternals.SymbolicReference, ref.Type())
	assert.Equal(t, ginternals.LocalBranchFullName("main"), ref.SymbolicTarget())
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r1, err := InitWithOptions("/repo", InitOptions{FS: fs})
	require.NoError(t, err)
	require.NoError(t, r1.Close())

	r2, err := InitWithOptions("/repo", InitOptions{FS: fs})
	require.NoError(t, err)
	defer r2.Close() //nolint:errcheck

	ref, err := r2.Backend().ReferenceShallow(ginternals.Head)
	require.NoError(t, err)
	assert.Equal(t, ginternals.LocalBranchFullName("main"), ref.SymbolicTarget())
}

func TestInitHonorsInitialBranchName(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := InitWithOptions("/repo", InitOptions{FS: fs, InitialBranchName: "trunk"})
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	ref, err := r.Backend().ReferenceShallow(ginternals.Head)
	require.NoError(t, err)
	assert.Equal(t, ginternals.LocalBranchFullName("trunk"), ref.SymbolicTarget())
}

func TestOpenRejectsMissingRepository(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := OpenWithOptions("/nowhere", OpenOptions{FS: fs})
	require.Error(t, err)
	assert.ErrorIs(t, err, ginternals.ErrNotARepository)
}

func TestOpenSucceedsOnUnbornBranch(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r1, err := InitWithOptions("/repo", InitOptions{FS: fs})
	require.NoError(t, err)
	require.NoError(t, r1.Close())

	r2, err := OpenWithOptions("/repo", OpenOptions{FS: fs})
	require.NoError(t, err, "HEAD pointing at a branch with no commit yet is still a valid repository")
	defer r2.Close() //nolint:errcheck
}

func TestFindHeadOnUnbornBranchIsNotFound(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)

	blob := object.NewBlob([]byte("hello"))
	_, err := r.Backend().WriteObject(blob.ToObject())
	require.NoError(t, err)

	_, err = r.Find(ginternals.Head, 0, false)
	assert.ErrorIs(t, err, ginternals.ErrRefNotFound, "HEAD's branch has no commit yet")
}

func TestFindShortHashLookup(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)

	blob := object.NewBlob([]byte("hello world"))
	oid, err := r.Backend().WriteObject(blob.ToObject())
	require.NoError(t, err)

	full := oid.String()
	got, err := r.Find(full[:8], 0, false)
	require.NoError(t, err)
	assert.Equal(t, oid, got)
}

func TestFindUnknownNameIsNotFound(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)

	_, err := r.Find("does-not-exist", 0, false)
	assert.ErrorIs(t, err, ginternals.ErrObjectNotFound)
}

func TestPeelCommitToTree(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)

	blob := object.NewBlob([]byte("content"))
	blobOid, err := r.Backend().WriteObject(blob.ToObject())
	require.NoError(t, err)

	tree := object.NewTree([]object.TreeEntry{
		{Path: "file.txt", ID: blobOid, Mode: object.ModeFile},
	})
	treeOid, err := r.Backend().WriteObject(tree.ToObject())
	require.NoError(t, err)

	commit := object.NewCommit(treeOid, object.Signature{Name: "t", Email: "t@t.com"}, &object.CommitOptions{Message: "first"})
	commitOid, err := r.Backend().WriteObject(commit.ToObject())
	require.NoError(t, err)

	resolved, err := r.peel(commitOid, object.TypeTree)
	require.NoError(t, err)
	assert.Equal(t, treeOid, resolved)
}

func TestDedupOids(t *testing.T) {
	t.Parallel()

	a := githash.Sum([]byte("a"))
	b := githash.Sum([]byte("b"))

	out := dedupOids([]githash.Oid{a, a, b})
	assert.Len(t, out, 2)
}
