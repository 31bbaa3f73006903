package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAndGet(t *testing.T) {
	t.Parallel()

	c := NewLRU(2)
	c.Add("a", 1)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestGetMissingKey(t *testing.T) {
	t.Parallel()

	c := NewLRU(2)
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestEvictsOldestBeyondMaxEntries(t *testing.T) {
	t.Parallel()

	c := NewLRU(2)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")

	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestClearRemovesEverything(t *testing.T) {
	t.Parallel()

	c := NewLRU(10)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
}

func TestLenTracksEntryCount(t *testing.T) {
	t.Parallel()

	c := NewLRU(10)
	assert.Equal(t, 0, c.Len())
	c.Add("a", 1)
	c.Add("b", 2)
	assert.Equal(t, 2, c.Len())
}
