package tagged256

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumMatchesDoubleHashDefinition(t *testing.T) {
	tag := []byte("TestTag")
	data := []byte("hello world")

	th := sha256.Sum256(tag)
	want := sha256.Sum256(append(append([]byte{}, th[:]...), append(th[:], data...)...))

	got := Sum(tag, data)
	require.Equal(t, want, got)
}

func TestMidstateReuseIsDeterministic(t *testing.T) {
	mid := NewMidstate([]byte("SomeTag"))
	a := mid.Sum([]byte("foo"))
	b := mid.Sum([]byte("foo"))
	require.Equal(t, a, b)

	c := mid.Sum([]byte("bar"))
	require.NotEqual(t, a, c)
}

func TestPrecomputedTagsAreStable(t *testing.T) {
	// TapLeaf/TapBranch/TapTweak midstates must equal the one-shot
	// definition for their ASCII tag.
	require.Equal(t, NewMidstate([]byte("TapLeaf")), TapLeaf)
	require.Equal(t, NewMidstate([]byte("TapBranch")), TapBranch)
	require.Equal(t, NewMidstate([]byte("TapTweak")), TapTweak)
}

func TestConcealedSealMidstateIsPinned(t *testing.T) {
	require.Equal(t, [Size]byte{
		0xfa, 0x0d, 0xa3, 0x05, 0xb2, 0xdc, 0xf8, 0xad,
		0x8b, 0xde, 0x43, 0xc6, 0x86, 0x7f, 0x3f, 0x99,
		0x93, 0xec, 0xac, 0x21, 0x11, 0xa7, 0xb0, 0x1e,
		0x46, 0x63, 0xb9, 0x81, 0xd9, 0x6e, 0xb7, 0x1b,
	}, CommitConcealedSeal.tag)
}
