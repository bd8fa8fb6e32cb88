// Package lockscript implements LNPBP-2: deterministic embedding of an
// LNPBP-1 key-set commitment into the scriptPubkey of a Bitcoin lock
// script. It extracts the set of public keys and pubkey hashes a script
// references, tweaks the container's public key against that set, and
// rewrites every occurrence of the original key or its hash with the
// tweaked replacement.
package lockscript

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/22388o/bp-core/lnpbp1"
	"github.com/22388o/bp-core/scriptwalk"
)

// ErrContainsNoKeys is returned when a script contains neither public key
// pushes nor pubkey-hash pushes to commit against.
var ErrContainsNoKeys = errors.New("lockscript: script contains no keys or hashes")

// ErrKeyNotFound is returned when the script's key set is nonempty but
// does not contain the container's public key, and the script contains no
// hashes that could resolve it instead.
var ErrKeyNotFound = errors.New("lockscript: container pubkey not found among script's keys")

// ErrContainsUnknownHashes is returned when the script contains a
// pubkey-hash push that does not match the hash of any key found in the
// script, nor the container's own pubkey hash.
var ErrContainsUnknownHashes = errors.New("lockscript: script contains pubkey hashes unresolvable against known keys")

// Container holds a lock script together with the public key that the
// commitment procedure will tweak, and the protocol tag the tweak is
// derived under. TweakingFactor is populated by EmbedCommit.
type Container struct {
	Script         []byte
	Pubkey         *btcec.PublicKey
	Tag            []byte
	TweakingFactor [32]byte
}

// EmbedCommit runs the LNPBP-2 procedure against container, committing msg
// into it, and returns the rewritten lock script. It mutates
// container.TweakingFactor as a side effect, mirroring the teacher's
// use of the tweaking factor as a recoverable witness of the commitment.
//
// Algorithm:
//  1. Extract the script's public key and pubkey-hash sets (delegated to
//     an external Miniscript-equivalent walker: scriptwalk).
//  2. If both sets are empty, fail with ErrContainsNoKeys.
//  3. Build the set of hash160 digests of every extracted key, plus the
//     hash of the container's own pubkey.
//  4. If the script has no hash pushes, the container's pubkey must be a
//     member of the extracted key set directly; otherwise every extracted
//     hash push must resolve against a known key hash.
//  5. Delegate to lnpbp1.EmbedCommit to tweak the container's pubkey
//     against the sorted key set.
//  6. Rewrite every occurrence of the original pubkey (by curve point)
//     and every occurrence of its hash160 with the tweaked replacements.
func EmbedCommit(container *Container, msg []byte) ([]byte, error) {
	keys, hashes, err := scriptwalk.ExtractPubkeyHashSet(container.Script)
	if err != nil {
		return nil, err
	}
	if keys.Len() == 0 && hashes.Len() == 0 {
		return nil, ErrContainsNoKeys
	}

	originalHash := scriptwalk.Hash160(container.Pubkey.SerializeCompressed())

	keyHashes := scriptwalk.NewHashSet()
	for _, k := range keys.Keys() {
		keyHashes.Add(scriptwalk.Hash160(k.SerializeCompressed()))
	}
	keyHashes.Add(originalHash)

	if hashes.Len() == 0 {
		if !keys.Contains(container.Pubkey) {
			return nil, ErrKeyNotFound
		}
	} else {
		unresolved := false
		hashes.Each(func(h [20]byte) {
			if !keyHashes.Contains(h) {
				unresolved = true
			}
		})
		if unresolved {
			return nil, ErrContainsUnknownHashes
		}
	}

	keyset := keys.Keys()
	if !keys.Contains(container.Pubkey) {
		keyset = append(keyset, container.Pubkey)
	}

	commitment, err := lnpbp1.EmbedCommit(container.Pubkey, keyset, container.Tag, msg)
	if err != nil {
		return nil, err
	}
	container.TweakingFactor = commitment.TweakingFactor

	tweakedHash := scriptwalk.Hash160(commitment.TweakedPubkey.SerializeCompressed())

	rewritten, _, err := scriptwalk.ReplacePubkeysAndHashes(
		container.Script,
		func(pk *btcec.PublicKey) (*btcec.PublicKey, bool) {
			if pk.IsEqual(container.Pubkey) {
				return commitment.TweakedPubkey, true
			}
			return nil, false
		},
		func(h [20]byte) ([20]byte, bool) {
			if h == originalHash {
				return tweakedHash, true
			}
			return h, false
		},
	)
	if err != nil {
		return nil, err
	}

	return rewritten, nil
}

// Verify re-runs EmbedCommit against a copy of container and msg and
// reports whether the resulting script equals rewritten. The container's
// recorded TweakingFactor is neither read nor compared; only the scripts
// are.
func Verify(container Container, msg []byte, rewritten []byte) (bool, error) {
	probe := container
	got, err := EmbedCommit(&probe, msg)
	if err != nil {
		return false, err
	}
	return string(got) == string(rewritten), nil
}
