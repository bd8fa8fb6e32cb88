// Package lnpbp1 implements the LNPBP-1 key-set commitment scheme: given a
// public key that is a member of a set of keys, derive a tweaked
// replacement for it that commits to an arbitrary message under a
// protocol-specific tag. The lockscript package (LNPBP-2) treats this as a
// black box, per spec.md §4.C.1.
package lnpbp1

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/22388o/bp-core/tagged256"
)

// ErrKeyNotInSet is returned when the committing public key is not a member
// of the key set whose sum the commitment is built over.
var ErrKeyNotInSet = errors.New("lnpbp1: pubkey is not a member of the key set")

// Commitment is the result of committing a message into a key set: the
// tweaked replacement for the container's public key, together with the
// tweaking factor (as a 32-byte scalar) used to derive it.
type Commitment struct {
	TweakedPubkey  *btcec.PublicKey
	TweakingFactor [32]byte
}

// EmbedCommit computes the LNPBP-1 key-set commitment:
//
//	sum  = sum of keyset, sorted by compressed encoding, as curve points
//	t    = HMAC-SHA256(key = tagged_sha256(tag, sum), data = msg)
//	p'   = pubkey + t*G
func EmbedCommit(pubkey *btcec.PublicKey, keyset []*btcec.PublicKey, tag []byte, msg []byte) (Commitment, error) {
	if !setContains(keyset, pubkey) {
		return Commitment{}, ErrKeyNotInSet
	}

	sorted := sortedKeyset(keyset)
	sumEncoding := sumKeys(sorted)

	tweakKey := tagged256.Sum(tag, sumEncoding)

	mac := hmac.New(sha256.New, tweakKey[:])
	mac.Write(msg)
	var tweakingFactor [32]byte
	copy(tweakingFactor[:], mac.Sum(nil))

	var tweak btcec.ModNScalar
	tweak.SetBytes(&tweakingFactor)

	var tweakPoint, pubkeyPoint, resultPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&tweak, &tweakPoint)
	pubkey.AsJacobian(&pubkeyPoint)
	btcec.AddNonConst(&pubkeyPoint, &tweakPoint, &resultPoint)
	resultPoint.ToAffine()

	tweaked := btcec.NewPublicKey(&resultPoint.X, &resultPoint.Y)

	return Commitment{
		TweakedPubkey:  tweaked,
		TweakingFactor: tweakingFactor,
	}, nil
}

// Verify recomputes the commitment for (pubkey, keyset, tag, msg) and
// reports whether it matches the candidate tweaking factor.
func Verify(pubkey *btcec.PublicKey, keyset []*btcec.PublicKey, tag, msg []byte, candidate [32]byte) (bool, error) {
	got, err := EmbedCommit(pubkey, keyset, tag, msg)
	if err != nil {
		return false, err
	}
	return got.TweakingFactor == candidate, nil
}

func setContains(keyset []*btcec.PublicKey, target *btcec.PublicKey) bool {
	targetBytes := target.SerializeCompressed()
	for _, k := range keyset {
		if string(k.SerializeCompressed()) == string(targetBytes) {
			return true
		}
	}
	return false
}

// sortedKeyset returns the keyset ordered lexicographically by compressed
// encoding, deduplicated by point, so the commitment is reproducible
// regardless of the caller's iteration order (spec.md §4.C "Determinism").
func sortedKeyset(keyset []*btcec.PublicKey) []*btcec.PublicKey {
	seen := make(map[string]*btcec.PublicKey, len(keyset))
	for _, k := range keyset {
		seen[string(k.SerializeCompressed())] = k
	}

	encodings := make([]string, 0, len(seen))
	for enc := range seen {
		encodings = append(encodings, enc)
	}
	sort.Strings(encodings)

	out := make([]*btcec.PublicKey, len(encodings))
	for i, enc := range encodings {
		out[i] = seen[enc]
	}
	return out
}

// sumKeys adds a sorted slice of public keys as curve points and returns
// the compressed encoding of the sum.
func sumKeys(sorted []*btcec.PublicKey) []byte {
	if len(sorted) == 0 {
		return nil
	}

	var acc btcec.JacobianPoint
	sorted[0].AsJacobian(&acc)

	for _, k := range sorted[1:] {
		var next, sum btcec.JacobianPoint
		k.AsJacobian(&next)
		btcec.AddNonConst(&acc, &next, &sum)
		acc = sum
	}
	acc.ToAffine()

	return btcec.NewPublicKey(&acc.X, &acc.Y).SerializeCompressed()
}
