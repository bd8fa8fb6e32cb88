// Package seal implements the blinded single-use-seal model: a revealed
// seal pointing at a transaction outpoint with a secret blinding factor,
// and its concealed (hashed) form that hides the outpoint from anyone
// without the blinding. It also implements the textual codec used to
// exchange revealed seals between parties.
package seal

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/22388o/bp-core/tagged256"
)

// CloseMethod identifies the transaction-output commitment technique a
// seal requires its closing transaction to use.
type CloseMethod uint8

const (
	// OpretFirst requires the first OP_RETURN output to carry the
	// commitment.
	OpretFirst CloseMethod = 0x00

	// TapretFirst requires the taproot output's script-tree to carry the
	// commitment.
	TapretFirst CloseMethod = 0x01
)

// String renders the method's canonical lowercase textual form.
func (m CloseMethod) String() string {
	switch m {
	case OpretFirst:
		return "opret1st"
	case TapretFirst:
		return "tapret1st"
	default:
		return fmt.Sprintf("closemethod(0x%02x)", uint8(m))
	}
}

// MethodParseError reports that a seal's method field did not match any
// known CloseMethod.
type MethodParseError struct {
	Text string
}

func (e MethodParseError) Error() string {
	return fmt.Sprintf("seal: wrong seal close method id %q", e.Text)
}

// ParseCloseMethod parses a method name case-insensitively.
func ParseCloseMethod(s string) (CloseMethod, error) {
	switch strings.ToLower(s) {
	case "opret1st":
		return OpretFirst, nil
	case "tapret1st":
		return TapretFirst, nil
	default:
		return 0, MethodParseError{Text: s}
	}
}

// Outpoint is a transaction output reference: (txid, vout).
type Outpoint struct {
	Txid chainhash.Hash
	Vout uint32
}

// ErrNoWitnessTxid is returned by RevealedSeal.Outpoint when the seal's
// txid is unknown (the seal was defined relative to a not-yet-broadcast
// witness transaction).
var ErrNoWitnessTxid = errors.New("seal: outpoint requested but seal has no known txid")

// RevealedSeal is the fully known form of a blinded single-use-seal: a
// close method, an optional txid (absent when the seal refers to a
// witness transaction not yet known), a vout, and a secret blinding
// factor.
type RevealedSeal struct {
	Method   CloseMethod
	Txid     *chainhash.Hash
	Vout     uint32
	Blinding uint64
}

// New constructs a revealed seal bound to outpoint, drawing its blinding
// factor from crypto/rand.
func New(method CloseMethod, outpoint Outpoint) (RevealedSeal, error) {
	return With(method, &outpoint.Txid, outpoint.Vout, rand.Reader)
}

// With constructs a revealed seal, drawing the blinding factor from rng.
// txid may be nil for a seal defined relative to a not-yet-known witness
// transaction.
func With(method CloseMethod, txid *chainhash.Hash, vout uint32, rng io.Reader) (RevealedSeal, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return RevealedSeal{}, fmt.Errorf("seal: drawing blinding factor: %w", err)
	}
	return RevealedSeal{
		Method:   method,
		Txid:     txid,
		Vout:     vout,
		Blinding: binary.LittleEndian.Uint64(buf[:]),
	}, nil
}

// Outpoint projects the seal onto its underlying transaction outpoint.
// It fails with ErrNoWitnessTxid if the seal's txid is unknown.
func (s RevealedSeal) Outpoint() (Outpoint, error) {
	if s.Txid == nil {
		return Outpoint{}, ErrNoWitnessTxid
	}
	return Outpoint{Txid: *s.Txid, Vout: s.Vout}, nil
}

// Conceal computes the seal's concealed form.
func (s RevealedSeal) Conceal() ConcealedSeal {
	return Commit(s)
}

// String renders the seal's canonical textual form:
// method:txid_or_~:vout#0x<blinding hex>.
func (s RevealedSeal) String() string {
	txid := "~"
	if s.Txid != nil {
		txid = s.Txid.String()
	}
	return fmt.Sprintf("%s:%s:%d#%s", s.Method, txid, s.Vout, formatBlinding(s.Blinding))
}

// formatBlinding renders n as "0x" followed by at least 8 lowercase hex
// digits, zero-padded, matching the textual grammar's HEX16 production
// (emit = exactly 8 digits minimum, more if the value requires them).
func formatBlinding(n uint64) string {
	digits := fmt.Sprintf("%x", n)
	if len(digits) < 8 {
		digits = strings.Repeat("0", 8-len(digits)) + digits
	}
	return "0x" + digits
}

// Sentinel errors of the RevealedSeal textual parser. An unknown close
// method is reported as a MethodParseError instead; ErrHex is returned by
// ParseConcealedSeal.
var (
	ErrMethodRequired   = errors.New("seal: single-use-seal must start with method name (e.g. 'tapret1st')")
	ErrTxidRequired     = errors.New("seal: full transaction id is required for the seal specification")
	ErrBlindingRequired = errors.New("seal: blinding factor must be specified after '#'")
	ErrWrongBlinding    = errors.New("seal: unable to parse blinding value; it must be a hexadecimal string starting with 0x")
	ErrWrongTxid        = errors.New("seal: unable to parse transaction id value; it must be a 64-character hexadecimal string")
	ErrWrongVout        = errors.New("seal: unable to parse transaction vout value; it must be a decimal unsigned integer")
	ErrWrongStructure   = errors.New("seal: wrong structure of seal string representation")
	ErrNonHexBlinding   = errors.New("seal: blinding secret must be represented by a hexadecimal value starting with 0x")
	ErrHex              = errors.New("seal: wrong representation of the blinded txout seal")
)

// Parse parses s into a RevealedSeal per the textual grammar
// `method:txid_or_~:vout#0x<hex>`.
func Parse(s string) (RevealedSeal, error) {
	parts := splitFields(s)

	p0, ok0 := fieldAt(parts, 0)
	p1, ok1 := fieldAt(parts, 1)
	p2, ok2 := fieldAt(parts, 2)
	p3, ok3 := fieldAt(parts, 3)
	_, ok4 := fieldAt(parts, 4)

	switch {
	case ok0 && (p0 == "~" || p0 == ""):
		return RevealedSeal{}, ErrMethodRequired

	case ok0 && ok1 && p1 == "":
		return RevealedSeal{}, ErrTxidRequired

	case ok0 && ok1 && !ok2 && strings.Contains(s, ":"):
		return RevealedSeal{}, ErrBlindingRequired

	case ok0 && ok1 && ok2 && ok3 && !ok4:
		if !strings.HasPrefix(p3, "0x") {
			return RevealedSeal{}, ErrNonHexBlinding
		}

		method, err := ParseCloseMethod(p0)
		if err != nil {
			return RevealedSeal{}, err
		}

		blinding, err := strconv.ParseUint(strings.TrimPrefix(p3, "0x"), 16, 64)
		if err != nil {
			return RevealedSeal{}, ErrWrongBlinding
		}

		vout, err := strconv.ParseUint(p2, 10, 32)
		if err != nil {
			return RevealedSeal{}, ErrWrongVout
		}

		if p1 == "~" {
			return RevealedSeal{
				Method:   method,
				Txid:     nil,
				Vout:     uint32(vout),
				Blinding: blinding,
			}, nil
		}

		txid, err := parseTxid(p1)
		if err != nil {
			return RevealedSeal{}, ErrWrongTxid
		}

		return RevealedSeal{
			Method:   method,
			Txid:     txid,
			Vout:     uint32(vout),
			Blinding: blinding,
		}, nil

	default:
		return RevealedSeal{}, ErrWrongStructure
	}
}

// splitFields splits s on every ':' or '#' byte, preserving empty fields
// between consecutive delimiters (matching the reference grammar's
// multi-character split, not a field-skipping split).
func splitFields(s string) []string {
	fields := make([]string, 0, 5)
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' || s[i] == '#' {
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	return append(fields, s[start:])
}

func fieldAt(fields []string, i int) (string, bool) {
	if i < len(fields) {
		return fields[i], true
	}
	return "", false
}

// parseTxid requires exactly the canonical 64-character hex txid; the
// grammar's TXID production is fixed-width, unlike chainhash.NewHashFromStr
// which tolerates and zero-pads shorter input.
func parseTxid(s string) (*chainhash.Hash, error) {
	if len(s) != 2*chainhash.HashSize {
		return nil, ErrWrongTxid
	}
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return nil, ErrWrongTxid
	}
	return h, nil
}

// ConcealedSeal is the 32-byte tagged hash of a revealed seal, concealing
// its outpoint and close method from anyone without the blinding factor.
type ConcealedSeal [32]byte

// Commit computes the concealed form of a revealed seal:
//
//	tagged_sha256(CommitConcealedSeal, method || txid_or_zeros || vout_le || blinding_le)
func Commit(reveal RevealedSeal) ConcealedSeal {
	var txidBytes [32]byte
	if reveal.Txid != nil {
		txidBytes = *reveal.Txid
	}

	var voutBytes [4]byte
	binary.LittleEndian.PutUint32(voutBytes[:], reveal.Vout)

	var blindingBytes [8]byte
	binary.LittleEndian.PutUint64(blindingBytes[:], reveal.Blinding)

	return ConcealedSeal(tagged256.CommitConcealedSeal.Sum(
		[]byte{byte(reveal.Method)},
		txidBytes[:],
		voutBytes[:],
		blindingBytes[:],
	))
}

// String renders the concealed seal as lowercase hex.
func (c ConcealedSeal) String() string {
	return hex.EncodeToString(c[:])
}

// ParseConcealedSeal decodes a hex-encoded concealed seal.
func ParseConcealedSeal(s string) (ConcealedSeal, error) {
	var out ConcealedSeal
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrHex, err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("%w: expected %d bytes, got %d", ErrHex, len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}
