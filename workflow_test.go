package git

import (
	"bytes"
	"testing"

	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkingRepo(t *testing.T) (*Repository, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	r, err := InitWithOptions("/repo", InitOptions{FS: fs})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
	})
	return r, fs
}

func writeWorktreeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "/repo/"+path, []byte(content), 0o644))
}

func TestAddStagesFile(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")

	require.NoError(t, r.Add([]string{"a.txt"}))

	idx, err := r.readIndex()
	require.NoError(t, err)
	require.Len(t, idx.Entries, 1)
	assert.Equal(t, "a.txt", idx.Entries[0].Name)
}

func TestAddSkipsIgnoredFiles(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, ".gitignore", "*.log\n")
	writeWorktreeFile(t, fs, "debug.log", "noise")
	writeWorktreeFile(t, fs, "keep.txt", "signal")

	// scoped ignore rules are read from .gitignore files in the index
	require.NoError(t, r.Add([]string{".gitignore"}))
	require.NoError(t, r.Add([]string{"."}))

	idx, err := r.readIndex()
	require.NoError(t, err)

	var names []string
	for _, e := range idx.Entries {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "keep.txt")
	assert.Contains(t, names, ".gitignore")
	assert.NotContains(t, names, "debug.log")
}

func TestCommitRequiresStagedChanges(t *testing.T) {
	t.Parallel()

	r, _ := newWorkingRepo(t)
	_, err := r.Commit("empty")
	require.Error(t, err)
}

func TestCommitCreatesAndMovesBranch(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))

	oid, err := r.Commit("first commit")
	require.NoError(t, err)

	o, err := r.Backend().Object(oid)
	require.NoError(t, err)
	commit, err := o.AsCommit()
	require.NoError(t, err)
	assert.Equal(t, "first commit", commit.Message())
	assert.Empty(t, commit.ParentIDs())

	head, err := r.Find("HEAD", 0, false)
	require.NoError(t, err)
	assert.Equal(t, oid, head)
}

func TestCommitSecondTimeHasParent(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))
	first, err := r.Commit("first")
	require.NoError(t, err)

	writeWorktreeFile(t, fs, "b.txt", "world")
	require.NoError(t, r.Add([]string{"b.txt"}))
	second, err := r.Commit("second")
	require.NoError(t, err)

	o, err := r.Backend().Object(second)
	require.NoError(t, err)
	commit, err := o.AsCommit()
	require.NoError(t, err)
	require.Len(t, commit.ParentIDs(), 1)
	assert.Equal(t, first, commit.ParentIDs()[0])
}

func TestStatusReportsStagedAndUntracked(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))
	writeWorktreeFile(t, fs, "untracked.txt", "surprise")

	report, err := r.Status()
	require.NoError(t, err)
	assert.True(t, report.Detached == false)
	require.Len(t, report.StagedChanges, 1)
	assert.Equal(t, "added", report.StagedChanges[0].Status)
	assert.Contains(t, report.Untracked, "untracked.txt")
}

func TestRmRemovesFromIndexAndWorktree(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))

	require.NoError(t, r.Rm([]string{"a.txt"}, false, false))

	idx, err := r.readIndex()
	require.NoError(t, err)
	assert.Empty(t, idx.Entries)

	exists, err := afero.Exists(fs, "/repo/a.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRmCachedKeepsWorktreeFile(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))

	require.NoError(t, r.Rm([]string{"a.txt"}, true, false))

	exists, err := afero.Exists(fs, "/repo/a.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCheckoutMaterializesTree(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))
	_, err := r.Commit("first")
	require.NoError(t, err)

	require.NoError(t, fs.Remove("/repo/a.txt"))

	require.NoError(t, r.Checkout("main", "", false))

	data, err := afero.ReadFile(fs, "/repo/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestCheckoutRefusesConflictingChangesWithoutForce(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))
	_, err := r.Commit("first")
	require.NoError(t, err)

	writeWorktreeFile(t, fs, "a.txt", "locally modified")

	err = r.Checkout("main", "", false)
	require.Error(t, err)
}

func TestLogWalksCommitsNewestFirst(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))
	_, err := r.Commit("first")
	require.NoError(t, err)

	writeWorktreeFile(t, fs, "b.txt", "world")
	require.NoError(t, r.Add([]string{"b.txt"}))
	_, err = r.Commit("second")
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, r.Log(buf, ""))

	out := buf.String()
	firstIdx := bytes.Index(buf.Bytes(), []byte("second"))
	secondIdx := bytes.Index(buf.Bytes(), []byte("first"))
	assert.True(t, firstIdx >= 0 && secondIdx > firstIdx, "expected newest commit message first, got: %s", out)
}

func TestTagLightweightAndAnnotated(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))
	commitOid, err := r.Commit("first")
	require.NoError(t, err)

	lightOid, err := r.Tag("v1", "", false, "")
	require.NoError(t, err)
	assert.Equal(t, commitOid, lightOid, "a lightweight tag points straight at the target")

	annotatedOid, err := r.Tag("v2", "", true, "release notes")
	require.NoError(t, err)
	assert.NotEqual(t, commitOid, annotatedOid, "an annotated tag creates its own tag object")

	o, err := r.Backend().Object(annotatedOid)
	require.NoError(t, err)
	tag, err := o.AsTag()
	require.NoError(t, err)
	assert.Equal(t, commitOid, tag.Target())
	assert.Equal(t, "release notes", tag.Message())

	names, err := r.ListTags()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, names)
}

func TestTagDuplicateNameFails(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))
	_, err := r.Commit("first")
	require.NoError(t, err)

	_, err = r.Tag("v1", "", false, "")
	require.NoError(t, err)

	_, err = r.Tag("v1", "", false, "")
	require.Error(t, err)
}

func TestCheckIgnoreReportsMatches(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, ".gitignore", "*.log\n")
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"."}))

	out, err := r.CheckIgnore([]string{"debug.log", "a.txt"})
	require.NoError(t, err)
	assert.True(t, out["debug.log"])
	assert.False(t, out["a.txt"])
}

func TestListFilesReturnsIndexContent(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	writeWorktreeFile(t, fs, "b.txt", "world")
	require.NoError(t, r.Add([]string{"a.txt", "b.txt"}))

	entries, err := r.ListFiles()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "b.txt", entries[1].Name)
}

func TestListTreeRecursive(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "dir/nested.txt", "content")
	writeWorktreeFile(t, fs, "top.txt", "top")
	require.NoError(t, r.Add([]string{"."}))
	_, err := r.Commit("first")
	require.NoError(t, err)

	flat, err := r.ListTree("HEAD", true)
	require.NoError(t, err)

	var paths []string
	for _, e := range flat {
		paths = append(paths, e.Path)
	}
	assert.ElementsMatch(t, []string{"dir/nested.txt", "top.txt"}, paths)

	shallow, err := r.ListTree("HEAD", false)
	require.NoError(t, err)
	require.Len(t, shallow, 2)
	for _, e := range shallow {
		if e.Path == "dir" {
			assert.Equal(t, object.ModeDirectory, e.Mode)
		}
	}
}

func TestListRefsReturnsSortedRefs(t *testing.T) {
	t.Parallel()

	r, fs := newWorkingRepo(t)
	writeWorktreeFile(t, fs, "a.txt", "hello")
	require.NoError(t, r.Add([]string{"a.txt"}))
	_, err := r.Commit("first")
	require.NoError(t, err)

	_, err = r.Tag("v1", "", false, "")
	require.NoError(t, err)

	refs, err := r.ListRefs()
	require.NoError(t, err)

	var names []string
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	require.Len(t, names, 2)
	assert.Equal(t, []string{"refs/heads/main", "refs/tags/v1"}, names)
}
