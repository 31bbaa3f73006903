package ignore

import (
	"testing"

	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher(t *testing.T, infoExclude, globalExcludes []byte, gitignores map[string][]byte) *Matcher {
	t.Helper()

	idx := index.New()
	blobs := map[githash.Oid]*object.Object{}
	for dir, content := range gitignores {
		name := ".gitignore"
		if dir != "" {
			name = dir + "/.gitignore"
		}
		blob := object.NewBlob(content)
		blobs[blob.ID()] = blob.ToObject()
		idx.Add(&index.Entry{Name: name, Oid: blob.ID()})
	}

	getObject := func(oid githash.Oid) (*object.Object, error) {
		return blobs[oid], nil
	}

	m, err := New(infoExclude, globalExcludes, idx, getObject)
	require.NoError(t, err)
	return m
}

func TestMatchAbsoluteRules(t *testing.T) {
	t.Parallel()

	m := newMatcher(t, []byte("*.log\n"), nil, nil)

	assert.True(t, m.Match("debug.log"))
	assert.True(t, m.Match("nested/debug.log"))
	assert.False(t, m.Match("keep.txt"))
}

func TestMatchScopedGitignoreOverridesAbsolute(t *testing.T) {
	t.Parallel()

	m := newMatcher(t, []byte("important.log\n"), nil, map[string][]byte{
		"sub": []byte("*.log\n!important.log\n"),
	})

	assert.True(t, m.Match("sub/debug.log"))
	assert.False(t, m.Match("sub/important.log"))
	// a sibling directory has no scoped rules of its own, so it falls
	// back to the absolute rules, none of which match debug.log
	assert.False(t, m.Match("other/debug.log"))
}

func TestMatchLastRuleWins(t *testing.T) {
	t.Parallel()

	m := newMatcher(t, []byte("*.log\n!keep.log\n*.log\n"), nil, nil)
	assert.True(t, m.Match("keep.log"), "the last rule re-ignores *.log")
}

func TestMatchIgnoresCommentsAndBlankLines(t *testing.T) {
	t.Parallel()

	m := newMatcher(t, []byte("# comment\n\n*.log\n"), nil, nil)
	assert.True(t, m.Match("debug.log"))
}

func TestMatchEscapedBang(t *testing.T) {
	t.Parallel()

	m := newMatcher(t, []byte(`\!important`+"\n"), nil, nil)
	assert.True(t, m.Match("!important"))
}

func TestMatchGlobalExcludesCombineWithInfoExclude(t *testing.T) {
	t.Parallel()

	m := newMatcher(t, []byte("*.log\n"), []byte("*.tmp\n"), nil)
	assert.True(t, m.Match("a.log"))
	assert.True(t, m.Match("a.tmp"))
}

func TestMatchRootPathNeverIgnored(t *testing.T) {
	t.Parallel()

	m := newMatcher(t, []byte("*\n"), nil, nil)
	assert.False(t, m.Match("."))
}
