package taproot

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"

	"github.com/22388o/bp-core/tagged256"
)

// TapLeafHash is a 32-byte tagged hash committing to a single Tapscript
// leaf's version and script bytes.
type TapLeafHash struct{ bytes [32]byte }

// TapBranchHash is a 32-byte tagged hash committing to two child node
// hashes, sorted lexicographically before hashing (BIP-341's canonical
// branch rule).
type TapBranchHash struct{ bytes [32]byte }

// TapNodeHash is the union of TapLeafHash and TapBranchHash: both convert
// into it without rehashing.
type TapNodeHash struct{ bytes [32]byte }

// Bytes returns the raw 32-byte digest.
func (h TapLeafHash) Bytes() [32]byte   { return h.bytes }
func (h TapBranchHash) Bytes() [32]byte { return h.bytes }
func (h TapNodeHash) Bytes() [32]byte   { return h.bytes }

// AsTapNodeHash converts a leaf hash into the node-hash union type.
func (h TapLeafHash) AsTapNodeHash() TapNodeHash { return TapNodeHash{bytes: h.bytes} }

// AsTapNodeHash converts a branch hash into the node-hash union type.
func (h TapBranchHash) AsTapNodeHash() TapNodeHash { return TapNodeHash{bytes: h.bytes} }

// NewTapNodeHash wraps a raw 32-byte digest as a TapNodeHash, for callers
// that already hold a script-tree root computed out of band (for example,
// by an external Miniscript/policy compiler) rather than folded up through
// TapMerklePath.MerkleRoot.
func NewTapNodeHash(data [32]byte) TapNodeHash { return TapNodeHash{bytes: data} }

// LeafVer is a Tapscript leaf version byte, constructible only via
// FromConsensus so that invalid values (the annex prefix, reserved bits)
// can never be represented.
type LeafVer struct {
	value    uint8
	isFuture bool
}

// TapScriptLeafVer is the standard BIP-342 Tapscript leaf version, 0xC0.
var TapScriptLeafVer = LeafVer{value: TapScriptVersion}

const (
	// AnnexPrefix is the witness annex marker byte; it can never be a
	// valid leaf version.
	AnnexPrefix uint8 = 0x50

	// TapScriptVersion is the BIP-342 Tapscript leaf version.
	TapScriptVersion uint8 = 0xC0

	// LeafVerMask isolates the low bit that must be zero for any valid
	// future leaf version.
	LeafVerMask uint8 = 0xFE
)

var (
	// ErrReservedAnnexVersion is returned for the annex-prefix byte 0x50.
	ErrReservedAnnexVersion = errors.New("taproot: 0x50 is reserved for the annex and is not a valid leaf version")

	// ErrOddLeafVersion is returned when the low bit of a candidate
	// future leaf version is set.
	ErrOddLeafVersion = errors.New("taproot: odd leaf versions other than 0xc0 are invalid")
)

// FromConsensus validates and constructs a LeafVer from its consensus byte
// representation.
func FromConsensus(version uint8) (LeafVer, error) {
	switch {
	case version == TapScriptVersion:
		return LeafVer{value: TapScriptVersion}, nil
	case version == AnnexPrefix:
		return LeafVer{}, ErrReservedAnnexVersion
	case version&LeafVerMask != version:
		return LeafVer{}, ErrOddLeafVersion
	default:
		return LeafVer{value: version, isFuture: true}, nil
	}
}

// ToConsensus returns the consensus byte representation of the leaf
// version.
func (v LeafVer) ToConsensus() uint8 { return v.value }

// IsTapScript reports whether this is the standard BIP-342 version.
func (v LeafVer) IsTapScript() bool { return !v.isFuture && v.value == TapScriptVersion }

// LeafScript pairs a leaf version with its script bytes.
type LeafScript struct {
	Version LeafVer
	Script  []byte
}

// TapLeafHash computes the tagged hash committing to this leaf:
// tagged_sha256("TapLeaf", version || compact_size(script) || script).
func (l LeafScript) TapLeafHash() TapLeafHash {
	var buf bytes.Buffer
	buf.WriteByte(l.Version.ToConsensus())
	_ = writeCompactSize(&buf, uint64(len(l.Script)))
	buf.Write(l.Script)

	return TapLeafHash{bytes: tagged256.TapLeaf.Sum(buf.Bytes())}
}

func writeCompactSize(buf *bytes.Buffer, n uint64) error {
	// Bitcoin's CompactSize/VarInt encoding, matching the wire format
	// used throughout the btcsuite stack (wire.WriteVarInt).
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0xfd)
		buf.WriteByte(byte(n))
		buf.WriteByte(byte(n >> 8))
	case n <= 0xffffffff:
		buf.WriteByte(0xfe)
		for i := 0; i < 4; i++ {
			buf.WriteByte(byte(n >> (8 * i)))
		}
	default:
		buf.WriteByte(0xff)
		for i := 0; i < 8; i++ {
			buf.WriteByte(byte(n >> (8 * i)))
		}
	}
	return nil
}

// TapScript is a script's raw bytes tagged as belonging to a Tapscript
// leaf, distinct from a generic LeafScript the way the original
// primitives/src/taproot.rs keeps TapScript and LeafScript as separate
// types.
type TapScript []byte

// LeafScript lifts a TapScript into a LeafScript using the standard
// Tapscript leaf version.
func (s TapScript) LeafScript() LeafScript {
	return LeafScript{Version: TapScriptLeafVer, Script: []byte(s)}
}

// BranchHash computes TapBranchHash(node1, node2), sorting the two
// children lexicographically before hashing so that BranchHash(a, b) ==
// BranchHash(b, a) for all inputs (BIP-341's canonical rule).
func BranchHash(node1, node2 TapNodeHash) TapBranchHash {
	lo, hi := node1.bytes, node2.bytes
	if bytes.Compare(lo[:], hi[:]) > 0 {
		lo, hi = hi, lo
	}
	return TapBranchHash{bytes: tagged256.TapBranch.Sum(lo[:], hi[:])}
}

// MaxMerklePathDepth is Taproot's maximum script-tree depth.
const MaxMerklePathDepth = 128

// ErrMerklePathTooDeep is returned when a Merkle path exceeds
// MaxMerklePathDepth entries.
var ErrMerklePathTooDeep = fmt.Errorf("taproot: merkle path exceeds maximum depth of %d", MaxMerklePathDepth)

// TapMerklePath is an ordered sequence of sibling branch hashes, bounded to
// [0, 128] entries.
type TapMerklePath struct {
	nodes []TapBranchHash
}

// NewTapMerklePath validates and constructs a TapMerklePath.
func NewTapMerklePath(nodes []TapBranchHash) (TapMerklePath, error) {
	if len(nodes) > MaxMerklePathDepth {
		return TapMerklePath{}, ErrMerklePathTooDeep
	}
	out := make([]TapBranchHash, len(nodes))
	copy(out, nodes)
	return TapMerklePath{nodes: out}, nil
}

// Len returns the number of entries in the path.
func (p TapMerklePath) Len() int { return len(p.nodes) }

// At returns the i-th sibling hash.
func (p TapMerklePath) At(i int) TapBranchHash { return p.nodes[i] }

// MerkleRoot folds a leaf hash up through the Merkle path to produce the
// script-tree root.
func (p TapMerklePath) MerkleRoot(leaf TapLeafHash) TapNodeHash {
	acc := leaf.AsTapNodeHash()
	for _, sibling := range p.nodes {
		acc = BranchHash(acc, sibling.AsTapNodeHash()).AsTapNodeHash()
	}
	return acc
}

// ControlBlock is the witness data proving a Tapscript leaf is part of a
// Taproot output's committed script tree.
type ControlBlock struct {
	LeafVersion     LeafVer
	OutputKeyParity Parity
	InternalKey     InternalPk
	MerkleBranch    TapMerklePath
}

// P2TR builds the 34-byte witness-v1 scriptPubkey OP_1 <32-byte output key>
// for the given internal key and optional script-tree merkle root.
func P2TR(internal InternalPk, merkleRoot *TapNodeHash) ([]byte, error) {
	outputKey, _, err := internal.ToOutputKey(merkleRoot)
	if err != nil {
		return nil, err
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_1)
	builder.AddData(schnorr.SerializePubKey(outputKey))
	return builder.Script()
}

// IsP2TR reports whether a scriptPubkey is a well-formed Taproot witness
// program: OP_1 OP_PUSHBYTES_32 <32 bytes>, 34 bytes total.
func IsP2TR(script []byte) bool {
	return len(script) == 34 &&
		script[0] == txscript.OP_1 &&
		script[1] == txscript.OP_DATA_32
}
