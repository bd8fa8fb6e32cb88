package taproot

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func testInternalKey(t *testing.T, seed byte) InternalPk {
	t.Helper()
	var sk [32]byte
	sk[31] = seed
	_, pub := btcec.PrivKeyFromBytes(sk[:])
	return InternalPkFromPubKey(pub)
}

func TestToOutputKeyDeterministic(t *testing.T) {
	internal := testInternalKey(t, 1)

	out1, parity1, err := internal.ToOutputKey(nil)
	require.NoError(t, err)
	out2, parity2, err := internal.ToOutputKey(nil)
	require.NoError(t, err)

	require.Equal(t, out1.SerializeCompressed(), out2.SerializeCompressed())
	require.Equal(t, parity1, parity2)
}

func TestToOutputKeyWithMerkleRootDiffers(t *testing.T) {
	internal := testInternalKey(t, 2)

	keyOnly, _, err := internal.ToOutputKey(nil)
	require.NoError(t, err)

	leaf := LeafScript{Version: TapScriptLeafVer, Script: []byte{0x51}}
	root := leaf.TapLeafHash().AsTapNodeHash()

	scripted, _, err := internal.ToOutputKey(&root)
	require.NoError(t, err)

	require.NotEqual(t, keyOnly.SerializeCompressed(), scripted.SerializeCompressed())
}

func TestParityXorAlgebra(t *testing.T) {
	require.Equal(t, Even, Even.Xor(Even))
	require.Equal(t, Odd, Even.Xor(Odd))
	require.Equal(t, Odd, Odd.Xor(Even))
	require.Equal(t, Even, Odd.Xor(Odd))

	// commutative
	require.Equal(t, Even.Xor(Odd), Odd.Xor(Even))
	// self-inverse
	require.Equal(t, Even, Odd.Xor(Odd))
}

func TestBranchHashCommutative(t *testing.T) {
	a := LeafScript{Version: TapScriptLeafVer, Script: []byte("a")}.TapLeafHash().AsTapNodeHash()
	b := LeafScript{Version: TapScriptLeafVer, Script: []byte("bb")}.TapLeafHash().AsTapNodeHash()

	require.Equal(t, BranchHash(a, b), BranchHash(b, a))
}

func TestLeafVersionValidity(t *testing.T) {
	v, err := FromConsensus(TapScriptVersion)
	require.NoError(t, err)
	require.True(t, v.IsTapScript())
	require.Equal(t, TapScriptVersion, v.ToConsensus())

	_, err = FromConsensus(AnnexPrefix)
	require.ErrorIs(t, err, ErrReservedAnnexVersion)

	// any odd version other than 0xc0 is invalid
	_, err = FromConsensus(0xc1)
	require.ErrorIs(t, err, ErrOddLeafVersion)

	// any even version outside {0x50, 0xc0} is a valid future version and
	// round-trips through ToConsensus
	future, err := FromConsensus(0xbe)
	require.NoError(t, err)
	require.False(t, future.IsTapScript())
	require.Equal(t, uint8(0xbe), future.ToConsensus())
}

func TestTapMerklePathBounds(t *testing.T) {
	nodes := make([]TapBranchHash, MaxMerklePathDepth)
	_, err := NewTapMerklePath(nodes)
	require.NoError(t, err)

	tooMany := make([]TapBranchHash, MaxMerklePathDepth+1)
	_, err = NewTapMerklePath(tooMany)
	require.ErrorIs(t, err, ErrMerklePathTooDeep)
}

func TestP2TRPredicate(t *testing.T) {
	internal := testInternalKey(t, 3)
	script, err := P2TR(internal, nil)
	require.NoError(t, err)
	require.Len(t, script, 34)
	require.True(t, IsP2TR(script))

	require.False(t, IsP2TR(script[:33]))
	require.False(t, IsP2TR(append([]byte{0x00}, script[1:]...)))
}
