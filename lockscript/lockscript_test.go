package lockscript

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/22388o/bp-core/scriptwalk"
)

func testKeys(t *testing.T, n int) []*btcec.PublicKey {
	t.Helper()
	keys := make([]*btcec.PublicKey, n)
	for i := 0; i < n; i++ {
		var sk [32]byte
		sk[30] = byte(i >> 8)
		sk[31] = byte(i + 1)
		_, pub := btcec.PrivKeyFromBytes(sk[:])
		keys[i] = pub
	}
	return keys
}

func pkScript(t *testing.T, pk *btcec.PublicKey) []byte {
	t.Helper()
	script, err := txscript.NewScriptBuilder().
		AddData(pk.SerializeCompressed()).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)
	return script
}

func pkhScript(t *testing.T, pk *btcec.PublicKey) []byte {
	t.Helper()
	hash := scriptwalk.Hash160(pk.SerializeCompressed())
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(hash[:]).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)
	return script
}

func dummyHashScript(t *testing.T, fill byte) []byte {
	t.Helper()
	var hash [20]byte
	for i := range hash {
		hash[i] = fill
	}
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(hash[:]).
		AddOp(txscript.OP_EQUAL).
		Script()
	require.NoError(t, err)
	return script
}

func testTag() []byte {
	tag := sha256.Sum256([]byte("TEST_TAG"))
	return tag[:]
}

func TestNoKeysAndHashes(t *testing.T) {
	keys := testKeys(t, 1)
	scripts := [][]byte{
		dummyHashScript(t, 0x01),
		dummyHashScript(t, 0x02),
	}

	for _, script := range scripts {
		container := &Container{Script: script, Pubkey: keys[0], Tag: testTag()}
		_, err := EmbedCommit(container, []byte("Test message"))
		require.ErrorIs(t, err, ErrContainsNoKeys)
	}
}

func TestUnknownKeyRejected(t *testing.T) {
	keys := testKeys(t, 5)
	script := pkScript(t, keys[1])

	container := &Container{Script: script, Pubkey: keys[0], Tag: testTag()}
	_, err := EmbedCommit(container, []byte("Test message"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestUnknownHashRejected(t *testing.T) {
	keys := testKeys(t, 5)
	script := pkhScript(t, keys[1])

	container := &Container{Script: script, Pubkey: keys[0], Tag: testTag()}
	_, err := EmbedCommit(container, []byte("Test message"))
	require.ErrorIs(t, err, ErrContainsUnknownHashes)
}

func TestKnownKeyCommitVerify(t *testing.T) {
	keys := testKeys(t, 4)
	msg := []byte("Test message")

	for _, key := range keys {
		script := pkScript(t, key)
		container := Container{Script: script, Pubkey: key, Tag: testTag()}

		working := container
		rewritten, err := EmbedCommit(&working, msg)
		require.NoError(t, err)

		working.TweakingFactor = container.TweakingFactor
		ok, err := Verify(container, msg, rewritten)
		require.NoError(t, err)
		require.True(t, ok)

		found, _, err := scriptwalk.ExtractPubkeyHashSet(rewritten)
		require.NoError(t, err)
		require.False(t, found.Contains(key))
	}
}

func TestKnownHashCommitVerify(t *testing.T) {
	keys := testKeys(t, 4)
	msg := []byte("Test message")

	for _, key := range keys {
		script := pkhScript(t, key)
		container := Container{Script: script, Pubkey: key, Tag: testTag()}

		rewritten, err := EmbedCommit(&container, msg)
		require.NoError(t, err)

		ok, err := Verify(container, msg, rewritten)
		require.NoError(t, err)
		require.True(t, ok)

		_, hashes, err := scriptwalk.ExtractPubkeyHashSet(rewritten)
		require.NoError(t, err)

		originalHash := scriptwalk.Hash160(key.SerializeCompressed())
		require.False(t, hashes.Contains(originalHash))
	}
}

func TestMultisigCommitVerify(t *testing.T) {
	keys := testKeys(t, 5)
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_2)
	for _, k := range keys[:3] {
		builder.AddData(k.SerializeCompressed())
	}
	builder.AddOp(txscript.OP_3)
	builder.AddOp(txscript.OP_CHECKMULTISIG)
	script, err := builder.Script()
	require.NoError(t, err)

	container := Container{Script: script, Pubkey: keys[1], Tag: testTag()}
	msg := []byte("Test message")

	rewritten, err := EmbedCommit(&container, msg)
	require.NoError(t, err)

	ok, err := Verify(container, msg, rewritten)
	require.NoError(t, err)
	require.True(t, ok)

	found, _, err := scriptwalk.ExtractPubkeyHashSet(rewritten)
	require.NoError(t, err)
	require.False(t, found.Contains(keys[1]))
	require.True(t, found.Contains(keys[0]))
	require.True(t, found.Contains(keys[2]))
}

func TestSubstitutionDeterministic(t *testing.T) {
	keys := testKeys(t, 3)
	script := pkScript(t, keys[0])
	msg := []byte("Test message")

	c1 := Container{Script: script, Pubkey: keys[0], Tag: testTag()}
	c2 := Container{Script: script, Pubkey: keys[0], Tag: testTag()}

	r1, err := EmbedCommit(&c1, msg)
	require.NoError(t, err)
	r2, err := EmbedCommit(&c2, msg)
	require.NoError(t, err)

	require.Equal(t, r1, r2)
	require.Equal(t, c1.TweakingFactor, c2.TweakingFactor)
}
