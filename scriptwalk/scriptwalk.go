// Package scriptwalk is a reference implementation of the two operations
// spec.md §9 says the LNPBP-2 engine merely consumes from an external
// Miniscript parser: extracting the set of public keys and pubkey hashes a
// lock script references, and rewriting every occurrence of a target key or
// hash. It recognizes the bare `pk`/`pk_h` push patterns a
// txscript.ScriptBuilder produces (OP_DATA_33/65 ... OP_CHECKSIG, and
// OP_DUP OP_HASH160 OP_DATA_20 ... OP_EQUALVERIFY OP_CHECKSIG), combined
// through OP_IF/OP_NOTIF/OP_ELSE/OP_ENDIF branches and
// OP_CHECKMULTISIG-style key pushes, the way
// Klingon-tech-klingdex/internal/swap/script.go builds scripts out of
// txscript.ScriptBuilder and qinglongcn-bpfschain/txscript/standard.go
// recognizes opcode-level script classes. It is not a Miniscript AST
// walker and does not aim for full policy-language coverage; it satisfies
// exactly the contract spec.md names.
package scriptwalk

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// KeySet is a deduplicated set of public keys, keyed by their underlying
// curve point (compressed and uncompressed encodings of the same point
// collapse to one entry, per spec.md §4.C step 2 and §9's conservative
// canonicalization choice).
type KeySet struct {
	byPoint map[string]*btcec.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet { return &KeySet{byPoint: map[string]*btcec.PublicKey{}} }

// Add inserts a key into the set, deduplicating by curve point.
func (s *KeySet) Add(pk *btcec.PublicKey) {
	s.byPoint[string(pk.SerializeCompressed())] = pk
}

// Contains reports whether pk (by curve point) is a member.
func (s *KeySet) Contains(pk *btcec.PublicKey) bool {
	_, ok := s.byPoint[string(pk.SerializeCompressed())]
	return ok
}

// Keys returns the set's members in lexicographic order of their compressed
// encoding, satisfying spec.md's determinism requirement for any caller
// that folds over the set.
func (s *KeySet) Keys() []*btcec.PublicKey {
	out := make([]*btcec.PublicKey, 0, len(s.byPoint))
	for _, pk := range s.byPoint {
		out = append(out, pk)
	}
	sortByCompressed(out)
	return out
}

// Len returns the number of distinct keys in the set.
func (s *KeySet) Len() int { return len(s.byPoint) }

// HashSet is a deduplicated set of 20-byte hash160 values.
type HashSet struct {
	seen map[[20]byte]struct{}
}

// NewHashSet returns an empty HashSet.
func NewHashSet() *HashSet { return &HashSet{seen: map[[20]byte]struct{}{}} }

// Add inserts a hash into the set.
func (s *HashSet) Add(h [20]byte) { s.seen[h] = struct{}{} }

// Contains reports whether h is a member.
func (s *HashSet) Contains(h [20]byte) bool {
	_, ok := s.seen[h]
	return ok
}

// Each calls fn once for every member of the set.
func (s *HashSet) Each(fn func([20]byte)) {
	for h := range s.seen {
		fn(h)
	}
}

// Len returns the number of distinct hashes in the set.
func (s *HashSet) Len() int { return len(s.seen) }

// ExtractPubkeyHashSet walks script and collects every public key
// referenced by a `pk`-style push (OP_DATA_33/65 immediately consumed by a
// signature-check opcode, or by the key list of a bare multisig template)
// and every 20-byte hash referenced by the canonical `pk_h` template
// `OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY`. Hash-preimage fragments
// such as Miniscript's `hash160(h)` use OP_EQUAL without the leading
// OP_DUP/OP_HASH160 pair and are deliberately not recognized as `pk_h`.
func ExtractPubkeyHashSet(script []byte) (*KeySet, *HashSet, error) {
	tokens, err := tokenize(script)
	if err != nil {
		return nil, nil, err
	}

	keys := NewKeySet()
	hashes := NewHashSet()

	for i, tok := range tokens {
		switch tok.opcode {
		case txscript.OP_CHECKSIG, txscript.OP_CHECKSIGVERIFY:
			if i > 0 && isPubkeyPush(tokens[i-1].opcode, tokens[i-1].data) {
				if pk, err := parsePubkey(tokens[i-1].data); err == nil {
					keys.Add(pk)
				}
			}

		case txscript.OP_CHECKMULTISIG, txscript.OP_CHECKMULTISIGVERIFY:
			for _, data := range multisigKeyPushes(tokens, i) {
				if pk, err := parsePubkey(data); err == nil {
					keys.Add(pk)
				}
			}

		case txscript.OP_EQUALVERIFY:
			if i > 0 && isPubkeyHashPushAt(tokens, i-1) {
				var h [20]byte
				copy(h[:], tokens[i-1].data)
				hashes.Add(h)
			}
		}
	}

	return keys, hashes, nil
}

// multisigKeyPushes recognizes the bare multisig template
// `OP_m <pk0> ... <pk(n-1)> OP_n OP_CHECKMULTISIG(VERIFY)` ending at
// tokens[i], and returns the raw pushed key data in order. It returns nil
// if tokens[i] is not preceded by a well-formed multisig key list.
func multisigKeyPushes(tokens []token, i int) [][]byte {
	if i < 1 {
		return nil
	}
	n, ok := smallInt(tokens[i-1].opcode)
	if !ok || n <= 0 {
		return nil
	}

	start := i - 1 - n
	if start < 1 {
		return nil
	}
	for j := start; j < i-1; j++ {
		if !isPubkeyPush(tokens[j].opcode, tokens[j].data) {
			return nil
		}
	}

	m, ok := smallInt(tokens[start-1].opcode)
	if !ok || m <= 0 || m > n {
		return nil
	}

	keys := make([][]byte, 0, n)
	for j := start; j < i-1; j++ {
		keys = append(keys, tokens[j].data)
	}
	return keys
}

// smallInt reports the numeric value of a minimal small-integer push
// opcode (OP_1 through OP_16), the form multisig's m-of-n counts use.
func smallInt(opcode byte) (int, bool) {
	if opcode >= txscript.OP_1 && opcode <= txscript.OP_16 {
		return int(opcode-txscript.OP_1) + 1, true
	}
	return 0, false
}

// token is one opcode/data pair from a tokenized script.
type token struct {
	opcode byte
	data   []byte
}

func isPubkeyPush(opcode byte, data []byte) bool {
	if opcode == txscript.OP_DATA_33 && len(data) == 33 {
		return true
	}
	if opcode == txscript.OP_DATA_65 && len(data) == 65 {
		return true
	}
	return false
}

// parsePubkey decodes a compressed or uncompressed SEC1 encoding into a
// btcec.PublicKey.
func parsePubkey(data []byte) (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(data)
}

// ReplacePubkeysAndHashes rewrites script, replacing every `pk`-occurrence
// of a key accepted by fnKey and every `pk_h`-occurrence of a hash accepted
// by fnHash. Substitution is total: every matching occurrence is rewritten,
// not just the first. It returns the rewritten script and the number of
// substitutions performed (diagnostic only, per spec.md §9's design note
// replacing the original's shared mutable counter).
func ReplacePubkeysAndHashes(
	script []byte,
	fnKey func(*btcec.PublicKey) (*btcec.PublicKey, bool),
	fnHash func([20]byte) ([20]byte, bool),
) ([]byte, int, error) {
	tokens, err := tokenize(script)
	if err != nil {
		return nil, 0, err
	}

	var out bytes.Buffer
	substitutions := 0

	for i, tok := range tokens {
		switch {
		case isPubkeyPush(tok.opcode, tok.data):
			pk, err := parsePubkey(tok.data)
			if err != nil {
				appendPush(&out, tok.opcode, tok.data)
				continue
			}
			if replacement, ok := fnKey(pk); ok {
				substitutions++
				appendPush(&out, pushOpcodeFor(replacement.SerializeCompressed()),
					replacement.SerializeCompressed())
				continue
			}
			appendPush(&out, tok.opcode, tok.data)

		case isPubkeyHashPushAt(tokens, i):
			var h [20]byte
			copy(h[:], tok.data)
			if replacement, ok := fnHash(h); ok {
				substitutions++
				appendPush(&out, txscript.OP_DATA_20, replacement[:])
				continue
			}
			appendPush(&out, tok.opcode, tok.data)

		default:
			appendPush(&out, tok.opcode, tok.data)
		}
	}

	return out.Bytes(), substitutions, nil
}

// tokenize fully decodes script into its opcode/data tokens.
func tokenize(script []byte) ([]token, error) {
	var tokens []token
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		tokens = append(tokens, token{tokenizer.Opcode(), tokenizer.Data()})
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// isPubkeyHashPushAt reports whether tokens[i] is the 20-byte push of a
// canonical pk_h template: tokens[i-2:i] == (OP_DUP, OP_HASH160) and
// tokens[i+1] == OP_EQUALVERIFY.
func isPubkeyHashPushAt(tokens []token, i int) bool {
	if tokens[i].opcode != txscript.OP_DATA_20 || len(tokens[i].data) != 20 {
		return false
	}
	if i < 2 || i+1 >= len(tokens) {
		return false
	}
	return tokens[i-2].opcode == txscript.OP_DUP &&
		tokens[i-1].opcode == txscript.OP_HASH160 &&
		tokens[i+1].opcode == txscript.OP_EQUALVERIFY
}

func appendPush(buf *bytes.Buffer, opcode byte, data []byte) {
	buf.WriteByte(opcode)
	buf.Write(data)
}

func pushOpcodeFor(data []byte) byte {
	switch len(data) {
	case 33:
		return txscript.OP_DATA_33
	case 65:
		return txscript.OP_DATA_65
	default:
		return byte(len(data))
	}
}

// Hash160 computes RIPEMD160(SHA256(data)), the hash used for pubkey-hash
// substitution targets.
func Hash160(data []byte) [20]byte {
	var out [20]byte
	copy(out[:], btcutil.Hash160(data))
	return out
}

func sortByCompressed(keys []*btcec.PublicKey) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0; j-- {
			a := keys[j-1].SerializeCompressed()
			b := keys[j].SerializeCompressed()
			if bytes.Compare(a, b) <= 0 {
				break
			}
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}
