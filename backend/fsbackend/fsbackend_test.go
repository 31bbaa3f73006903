package fsbackend

import (
	"testing"

	"github.com/bokuyemskyy/mgit/backend"
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/config"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	fs := afero.NewMemMapFs()
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		GitDirPath:       "/repo/.git",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)

	b := New(cfg)
	require.NoError(t, b.Init())
	return b
}

func TestWriteObjectThenReadBack(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	blob := object.NewBlob([]byte("hello world"))
	oid, err := b.WriteObject(blob.ToObject())
	require.NoError(t, err)
	assert.Equal(t, blob.ID(), oid)

	has, err := b.HasObject(oid)
	require.NoError(t, err)
	assert.True(t, has)

	got, err := b.Object(oid)
	require.NoError(t, err)
	gotBlob := got.AsBlob()
	assert.Equal(t, []byte("hello world"), gotBlob.Bytes())
}

func TestWriteObjectIsIdempotent(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	blob := object.NewBlob([]byte("same content"))
	oid1, err := b.WriteObject(blob.ToObject())
	require.NoError(t, err)
	oid2, err := b.WriteObject(blob.ToObject())
	require.NoError(t, err)
	assert.Equal(t, oid1, oid2)
}

func TestObjectNotFound(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	_, err := b.Object(githash.Sum([]byte("nope")))
	assert.ErrorIs(t, err, ginternals.ErrObjectNotFound)
}

func TestWalkObjectIDsVisitsEveryWrittenObject(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	oid1, err := b.WriteObject(object.NewBlob([]byte("a")).ToObject())
	require.NoError(t, err)
	oid2, err := b.WriteObject(object.NewBlob([]byte("b")).ToObject())
	require.NoError(t, err)

	seen := map[githash.Oid]bool{}
	err = b.WalkObjectIDs(func(oid githash.Oid) error {
		seen[oid] = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, seen[oid1])
	assert.True(t, seen[oid2])
}

func TestWalkObjectIDsStopsOnSentinel(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	_, err := b.WriteObject(object.NewBlob([]byte("a")).ToObject())
	require.NoError(t, err)
	_, err = b.WriteObject(object.NewBlob([]byte("b")).ToObject())
	require.NoError(t, err)

	visits := 0
	err = b.WalkObjectIDs(func(oid githash.Oid) error {
		visits++
		return backend.ErrWalkStop
	})
	require.NoError(t, err)
	assert.Equal(t, 1, visits)
}

func TestWriteReferenceAndRead(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	oid := githash.Sum([]byte("commit"))
	ref := ginternals.NewReference("refs/heads/main", oid)
	require.NoError(t, b.WriteReference(ref))

	got, err := b.Reference("refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, ginternals.OidReference, got.Type())
	assert.Equal(t, oid, got.Target())
}

func TestWriteReferenceSafeRejectsExisting(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	oid := githash.Sum([]byte("commit"))
	ref := ginternals.NewReference("refs/heads/main", oid)
	require.NoError(t, b.WriteReferenceSafe(ref))

	err := b.WriteReferenceSafe(ref)
	assert.True(t, xerrors.Is(err, ginternals.ErrRefExists))
}

func TestReferenceMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	_, err := b.Reference("refs/heads/does-not-exist")
	assert.ErrorIs(t, err, ginternals.ErrRefNotFound)
}

func TestReferenceFollowsSymbolicChain(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	oid := githash.Sum([]byte("commit"))
	require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/main", oid)))
	require.NoError(t, b.WriteReference(ginternals.NewSymbolicReference(ginternals.Head, "refs/heads/main")))

	got, err := b.Reference(ginternals.Head)
	require.NoError(t, err)
	assert.Equal(t, ginternals.SymbolicReference, got.Type())
	assert.Equal(t, oid, got.Target())
}

func TestReferenceShallowDoesNotRequireTargetToExist(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	require.NoError(t, b.WriteReference(ginternals.NewSymbolicReference(ginternals.Head, "refs/heads/main")))

	ref, err := b.ReferenceShallow(ginternals.Head)
	require.NoError(t, err, "HEAD should be readable even before refs/heads/main exists")
	assert.Equal(t, ginternals.SymbolicReference, ref.Type())
	assert.Equal(t, "refs/heads/main", ref.SymbolicTarget())

	_, err = b.Reference(ginternals.Head)
	assert.ErrorIs(t, err, ginternals.ErrRefNotFound, "the fully-resolving Reference should still fail on an unborn branch")
}

func TestReferenceShallowReturnsOidDirectly(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	oid := githash.Sum([]byte("commit"))
	require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/main", oid)))

	ref, err := b.ReferenceShallow("refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, ginternals.OidReference, ref.Type())
	assert.Equal(t, oid, ref.Target())
}

func TestWalkReferencesVisitsSortedDepthFirst(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)

	require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/main", githash.Sum([]byte("a")))))
	require.NoError(t, b.WriteReference(ginternals.NewReference("refs/tags/v1", githash.Sum([]byte("b")))))
	require.NoError(t, b.WriteReference(ginternals.NewReference("refs/tags/v2", githash.Sum([]byte("c")))))

	var names []string
	err := b.WalkReferences(func(ref *ginternals.Reference) error {
		names = append(names, ref.Name())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/main", "refs/tags/v1", "refs/tags/v2"}, names)
}
