package lnpbp1

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T, n int) []*btcec.PublicKey {
	t.Helper()
	keys := make([]*btcec.PublicKey, n)
	for i := 0; i < n; i++ {
		var sk [32]byte
		sk[31] = byte(i + 1)
		_, pub := btcec.PrivKeyFromBytes(sk[:])
		keys[i] = pub
	}
	return keys
}

func TestEmbedCommitDeterministic(t *testing.T) {
	keys := testKeys(t, 5)
	tag := sha256.Sum256([]byte("TEST_TAG"))
	msg := []byte("Test message")

	c1, err := EmbedCommit(keys[0], keys, tag[:], msg)
	require.NoError(t, err)
	c2, err := EmbedCommit(keys[0], keys, tag[:], msg)
	require.NoError(t, err)

	require.Equal(t, c1.TweakingFactor, c2.TweakingFactor)
	require.Equal(t, c1.TweakedPubkey.SerializeCompressed(), c2.TweakedPubkey.SerializeCompressed())
}

func TestEmbedCommitOrderIndependent(t *testing.T) {
	keys := testKeys(t, 5)
	reversed := make([]*btcec.PublicKey, len(keys))
	for i, k := range keys {
		reversed[len(keys)-1-i] = k
	}

	tag := sha256.Sum256([]byte("TEST_TAG"))
	msg := []byte("Test message")

	c1, err := EmbedCommit(keys[2], keys, tag[:], msg)
	require.NoError(t, err)
	c2, err := EmbedCommit(keys[2], reversed, tag[:], msg)
	require.NoError(t, err)

	require.Equal(t, c1.TweakingFactor, c2.TweakingFactor)
}

func TestEmbedCommitKeyNotInSet(t *testing.T) {
	keys := testKeys(t, 3)
	outsider := testKeys(t, 4)[3]

	tag := sha256.Sum256([]byte("TEST_TAG"))
	_, err := EmbedCommit(outsider, keys, tag[:], []byte("msg"))
	require.ErrorIs(t, err, ErrKeyNotInSet)
}

func TestVerifyRoundTrip(t *testing.T) {
	keys := testKeys(t, 4)
	tag := sha256.Sum256([]byte("TEST_TAG"))
	msg := []byte("Test message")

	commitment, err := EmbedCommit(keys[1], keys, tag[:], msg)
	require.NoError(t, err)

	ok, err := Verify(keys[1], keys, tag[:], msg, commitment.TweakingFactor)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Verify(keys[1], keys, tag[:], []byte("different message"), commitment.TweakingFactor)
	require.NoError(t, err)
	require.False(t, ok)
}
