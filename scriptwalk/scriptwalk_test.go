package scriptwalk

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/davecgh/go-spew/spew"
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
	hash := btcutil.Hash160(pk.SerializeCompressed())
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(hash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)
	return script
}

func TestExtractPkScript(t *testing.T) {
	keys := testKeys(t, 1)
	script := pkScript(t, keys[0])

	found, hashes, err := ExtractPubkeyHashSet(script)
	require.NoError(t, err)
	require.Equal(t, 1, found.Len())
	require.True(t, found.Contains(keys[0]))
	require.Equal(t, 0, hashes.Len())
}

func TestExtractPkhScript(t *testing.T) {
	keys := testKeys(t, 1)
	script := pkhScript(t, keys[0])

	found, hashes, err := ExtractPubkeyHashSet(script)
	require.NoError(t, err)
	require.Equal(t, 0, found.Len())
	require.Equal(t, 1, hashes.Len())
	require.True(t, hashes.Contains(Hash160(keys[0].SerializeCompressed())))
}

func TestReplacePubkeyTotalSubstitution(t *testing.T) {
	keys := testKeys(t, 2)
	builder := txscript.NewScriptBuilder()
	builder.AddData(keys[0].SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_SWAP)
	builder.AddData(keys[0].SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIGVERIFY)
	script, err := builder.Script()
	require.NoError(t, err)

	rewritten, count, err := ReplacePubkeysAndHashes(
		script,
		func(pk *btcec.PublicKey) (*btcec.PublicKey, bool) {
			if pk.IsEqual(keys[0]) {
				return keys[1], true
			}
			return nil, false
		},
		func(h [20]byte) ([20]byte, bool) { return h, false },
	)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	found, _, err := ExtractPubkeyHashSet(rewritten)
	require.NoError(t, err)
	require.True(t, found.Contains(keys[1]))
	require.False(t, found.Contains(keys[0]))

	t.Logf("rewritten script: %s", spew.Sdump(rewritten))
}

func TestReplaceHash(t *testing.T) {
	keys := testKeys(t, 2)
	script := pkhScript(t, keys[0])
	targetHash := Hash160(keys[0].SerializeCompressed())
	replacementHash := Hash160(keys[1].SerializeCompressed())

	rewritten, count, err := ReplacePubkeysAndHashes(
		script,
		func(pk *btcec.PublicKey) (*btcec.PublicKey, bool) { return nil, false },
		func(h [20]byte) ([20]byte, bool) {
			if h == targetHash {
				return replacementHash, true
			}
			return h, false
		},
	)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, hashes, err := ExtractPubkeyHashSet(rewritten)
	require.NoError(t, err)
	require.True(t, hashes.Contains(replacementHash))
	require.False(t, hashes.Contains(targetHash))
}
