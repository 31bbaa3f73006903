package githash_test

import (
	"testing"

	"github.com/bokuyemskyy/mgit/githash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	// git hash-object reference value for "blob 3\0hi\n"
	oid := githash.Sum([]byte("blob 3\x00hi\n"))
	assert.Equal(t, "45b983be36b73c0788dc9cbcb76cbb80fc7bb057", oid.String())
}

func TestFromHexRoundTrip(t *testing.T) {
	oid := githash.Sum([]byte("blob 0\x00"))
	back, err := githash.FromHex(oid.String())
	require.NoError(t, err)
	assert.Equal(t, oid, back)
}

func TestFromHexInvalid(t *testing.T) {
	_, err := githash.FromHex("not-a-sha")
	assert.ErrorIs(t, err, githash.ErrInvalidOid)

	_, err = githash.FromHex("abcd")
	assert.ErrorIs(t, err, githash.ErrInvalidOid)
}

func TestFromBytesWrongSize(t *testing.T) {
	_, err := githash.FromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, githash.ErrInvalidOid)
}

func TestIsZero(t *testing.T) {
	assert.True(t, githash.NullOid.IsZero())
	oid := githash.Sum([]byte("x"))
	assert.False(t, oid.IsZero())
}
