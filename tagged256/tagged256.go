// Package tagged256 implements BIP-340 tagged SHA-256 hashing with
// precomputed domain-separation midstates, the way chantools' taproot
// call sites precompute a tag hash once and reuse it (see
// cmd/chantools/rescuetweakedkey.go's tapTweakHash construction) rather
// than rehashing the tag on every call.
package tagged256

import (
	"crypto/sha256"
)

// Size is the length in bytes of a tagged SHA-256 digest.
const Size = sha256.Size

// Midstate holds the precomputed 32-byte tag digest of a tagged hash. Sum
// writes that digest twice into a fresh SHA-256 hasher ahead of the
// message; no SHA-256 chaining state is stored or cloned, so the 64-byte
// prefix is hashed again on every call.
type Midstate struct {
	tag [Size]byte
}

// NewMidstate precomputes the tag digest SHA256(tag) that a BIP-340 tagged
// hash writes twice ahead of its message.
func NewMidstate(tag []byte) Midstate {
	h := sha256.Sum256(tag)
	return Midstate{tag: h}
}

// Sum computes tagged_sha256(tag, data) = SHA256(SHA256(tag) || SHA256(tag) || data)
// by writing the precomputed tag digest twice, then data, into a fresh hasher.
func (m Midstate) Sum(data ...[]byte) [Size]byte {
	h := sha256.New()
	h.Write(m.tag[:])
	h.Write(m.tag[:])
	for _, d := range data {
		h.Write(d)
	}

	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Sum computes a one-shot tagged hash without a precomputed midstate. It is
// provided for callers that hash with a tag only once; hot paths should
// precompute a Midstate with NewMidstate instead.
func Sum(tag []byte, data ...[]byte) [Size]byte {
	return NewMidstate(tag).Sum(data...)
}

var (
	// TapLeaf is the domain tag for TapLeaf hashes (BIP-341).
	TapLeaf = NewMidstate([]byte("TapLeaf"))

	// TapBranch is the domain tag for TapBranch hashes (BIP-341).
	TapBranch = NewMidstate([]byte("TapBranch"))

	// TapTweak is the domain tag for TapTweak hashes (BIP-341).
	TapTweak = NewMidstate([]byte("TapTweak"))

	// CommitConcealedSeal is the domain tag for blinded single-use-seal
	// commitments. Unlike TapLeaf/TapBranch/TapTweak, its bytes are not
	// derived from an ASCII tag: the constant below is used as the
	// precomputed value directly, so Sum hashes
	// constant || constant || message.
	CommitConcealedSeal = Midstate{tag: concealedSealMidstate}
)

// concealedSealMidstate is the literal 32-byte constant from the LNP/BP
// single-use-seal specification, used as CommitConcealedSeal's precomputed
// value as is (it is not hashed again). It MUST be reproduced byte-exactly for
// cross-implementation compatibility; it is not an ASCII tag string
// because the upstream protocol pins this exact 32-byte value.
var concealedSealMidstate = [Size]byte{
	0xfa, 0x0d, 0xa3, 0x05, 0xb2, 0xdc, 0xf8, 0xad,
	0x8b, 0xde, 0x43, 0xc6, 0x86, 0x7f, 0x3f, 0x99,
	0x93, 0xec, 0xac, 0x21, 0x11, 0xa7, 0xb0, 0x1e,
	0x46, 0x63, 0xb9, 0x81, 0xd9, 0x6e, 0xb7, 0x1b,
}
