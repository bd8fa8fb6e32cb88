// Package taproot implements the Taproot data model this module commits
// into: x-only internal keys, the TapLeaf/TapBranch/TapTweak tagged-hash
// tree, leaf-version encoding, bounded Merkle paths, control blocks, and
// output-key derivation. It follows the shape of chantools'
// cmd/chantools/rescuetweakedkey.go tweak-add pattern, generalized from a
// one-off rescue script into a reusable package.
package taproot

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/22388o/bp-core/tagged256"
)

// ErrTweakOverflow is returned when a TapTweak hash, interpreted as a scalar,
// is not smaller than the curve order. This is cryptographically negligible
// (probability 2^-128) and is treated as an internal invariant violation
// rather than a normal error.
var ErrTweakOverflow = errors.New("taproot: tweak hash exceeds curve order")

// InternalPk is a 32-byte x-only public key on secp256k1.
type InternalPk struct {
	key *btcec.PublicKey
}

// InternalPkFromBytes parses a 32-byte x-only public key.
func InternalPkFromBytes(data []byte) (InternalPk, error) {
	key, err := schnorr.ParsePubKey(data)
	if err != nil {
		return InternalPk{}, fmt.Errorf("taproot: invalid internal key: %w", err)
	}
	return InternalPk{key: key}, nil
}

// InternalPkFromPubKey lifts a full (possibly even/odd-Y) public key into
// its x-only form.
func InternalPkFromPubKey(pk *btcec.PublicKey) InternalPk {
	xOnly, _ := schnorr.ParsePubKey(schnorr.SerializePubKey(pk))
	return InternalPk{key: xOnly}
}

// Bytes returns the 32-byte x-only serialization of the key.
func (p InternalPk) Bytes() [32]byte {
	var out [32]byte
	copy(out[:], schnorr.SerializePubKey(p.key))
	return out
}

// PubKey returns the underlying even-Y public key point.
func (p InternalPk) PubKey() *btcec.PublicKey { return p.key }

// ToOutputKey computes the Taproot output key:
//
//	t = tagged_sha256("TapTweak", internal || merkleRoot?)
//	(outputKey, parity) = internal.add_tweak(t)
//
// merkleRoot is nil for a key-path-only (script-less) output.
func (p InternalPk) ToOutputKey(merkleRoot *TapNodeHash) (*btcec.PublicKey, Parity, error) {
	internalBytes := p.Bytes()

	var tweakHash [32]byte
	if merkleRoot != nil {
		tweakHash = tagged256.TapTweak.Sum(internalBytes[:], merkleRoot.bytes[:])
	} else {
		tweakHash = tagged256.TapTweak.Sum(internalBytes[:])
	}

	var tweak btcec.ModNScalar
	if overflow := tweak.SetBytes(&tweakHash); overflow != 0 {
		return nil, Even, ErrTweakOverflow
	}

	tweaked, outParity := addTweak(p.key, &tweak)

	if !tweakAddCheck(p.key, tweaked, outParity, &tweak) {
		return nil, Even, errors.New("taproot: tweak-add self-check failed")
	}

	return tweaked, outParity, nil
}

// addTweak computes internal + tweak*G and returns the resulting point's
// x-only form together with the parity of its Y coordinate, mirroring BIP-341
// key tweaking (the same operation chantools' mutateWithTweak performs on the
// private-key side in cmd/chantools/rescuetweakedkey.go).
func addTweak(internal *btcec.PublicKey, tweak *btcec.ModNScalar) (*btcec.PublicKey, Parity) {
	var tweakPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(tweak, &tweakPoint)

	var internalPoint btcec.JacobianPoint
	internal.AsJacobian(&internalPoint)

	var resultPoint btcec.JacobianPoint
	btcec.AddNonConst(&internalPoint, &tweakPoint, &resultPoint)
	resultPoint.ToAffine()

	parity := Even
	if resultPoint.Y.IsOdd() {
		parity = Odd
	}

	return btcec.NewPublicKey(&resultPoint.X, &resultPoint.Y), parity
}

// tweakAddCheck is the debug-style self-check described in spec §4.B step 4:
// re-deriving the output key from the internal key and tweak, and comparing
// it (with its expected parity) to the candidate output key.
func tweakAddCheck(internal, output *btcec.PublicKey, parity Parity, tweak *btcec.ModNScalar) bool {
	got, gotParity := addTweak(internal, tweak)
	if gotParity != parity {
		return false
	}
	return got.X().Cmp(output.X()) == 0 && got.Y().Cmp(output.Y()) == 0
}

// Parity is the parity of the Y-coordinate of a Taproot output key.
type Parity int

const (
	Even Parity = iota
	Odd
)

// Xor returns the XOR of two parities: Even is identity, values are
// self-inverse.
func (p Parity) Xor(q Parity) Parity {
	if p == q {
		return Even
	}
	return Odd
}

func (p Parity) String() string {
	if p == Odd {
		return "odd"
	}
	return "even"
}
