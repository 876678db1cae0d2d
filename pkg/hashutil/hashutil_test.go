package hashutil_test

import (
	"testing"

	"github.com/rohmanhakim/tariff-mirror/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytes_SHA256KnownVector(t *testing.T) {
	// sha256("abc")
	got, err := hashutil.HashBytes([]byte("abc"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got)
}

func TestHashBytes_BLAKE3Deterministic(t *testing.T) {
	first, err := hashutil.HashBytes([]byte("%PDF-1.4 sample"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	second, err := hashutil.HashBytes([]byte("%PDF-1.4 sample"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	other, err := hashutil.HashBytes([]byte("%PDF-1.4 changed"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestHashBytes_UnsupportedAlgo(t *testing.T) {
	_, err := hashutil.HashBytes([]byte("x"), "md5")
	assert.Error(t, err)
}

func TestNewHasher_StreamingMatchesOneShot(t *testing.T) {
	for _, algo := range []hashutil.HashAlgo{hashutil.HashAlgoSHA256, hashutil.HashAlgoBLAKE3} {
		h, err := hashutil.NewHasher(algo)
		require.NoError(t, err)

		_, _ = h.Write([]byte("%PDF-1.4 "))
		_, _ = h.Write([]byte("chunked body"))

		oneShot, err := hashutil.HashBytes([]byte("%PDF-1.4 chunked body"), algo)
		require.NoError(t, err)
		assert.Equal(t, oneShot, hashutil.HexSum(h), "algo %s", algo)
	}
}

func TestNewHasher_UnsupportedAlgo(t *testing.T) {
	_, err := hashutil.NewHasher("crc32")
	assert.Error(t, err)
}
