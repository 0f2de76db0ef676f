package gateway

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// FeltLength is the size in bytes of a field element.
const FeltLength = 32

// fieldPrime is the Starknet field modulus 2^251 + 17*2^192 + 1, big-endian.
var fieldPrime = [FeltLength]byte{
	0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x11,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
}

// Felt is a big-endian Starknet field element.
type Felt [FeltLength]byte

// FeltFromUint64 returns the field element with value v.
func FeltFromUint64(v uint64) Felt {
	var f Felt
	for i := range 8 {
		f[FeltLength-1-i] = byte(v >> (8 * i))
	}
	return f
}

// ParseFelt parses a 0x-prefixed hex string of at most 64 digits.
// Values outside the field are rejected.
func ParseFelt(s string) (Felt, error) {
	var f Felt

	digits, ok := strings.CutPrefix(s, "0x")
	if !ok {
		digits, ok = strings.CutPrefix(s, "0X")
	}
	if !ok {
		return f, fmt.Errorf("felt %q: missing 0x prefix", s)
	}
	if digits == "" {
		return f, fmt.Errorf("felt %q: no hex digits", s)
	}
	if len(digits) > 2*FeltLength {
		return f, fmt.Errorf("felt %q: more than %d hex digits", s, 2*FeltLength)
	}

	padded := strings.Repeat("0", 2*FeltLength-len(digits)) + digits
	if _, err := hex.Decode(f[:], []byte(padded)); err != nil {
		return Felt{}, fmt.Errorf("felt %q: %w", s, err)
	}
	if bytes.Compare(f[:], fieldPrime[:]) >= 0 {
		return Felt{}, fmt.Errorf("felt %q: exceeds field modulus", s)
	}
	return f, nil
}

// MustParseFelt is like ParseFelt but panics on error.
func MustParseFelt(s string) Felt {
	f, err := ParseFelt(s)
	if err != nil {
		panic(err)
	}
	return f
}

// IsZero reports whether f is the zero element.
func (f Felt) IsZero() bool {
	return f == Felt{}
}

// String renders f as 0x followed by lowercase hex without leading zeros.
func (f Felt) String() string {
	encoded := strings.TrimLeft(hex.EncodeToString(f[:]), "0")
	if encoded == "" {
		return "0x0"
	}
	return "0x" + encoded
}

func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Felt) UnmarshalText(text []byte) error {
	parsed, err := ParseFelt(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// BlockHash identifies a block.
type BlockHash struct{ Felt }

// ClassHash identifies a declared contract class.
type ClassHash struct{ Felt }

// TransactionHash identifies a transaction.
type TransactionHash struct{ Felt }

// ContractAddress identifies a deployed contract.
type ContractAddress struct{ Felt }

// ParseBlockHash parses a hex block hash.
func ParseBlockHash(s string) (BlockHash, error) {
	f, err := ParseFelt(s)
	return BlockHash{f}, err
}

// ParseClassHash parses a hex class hash.
func ParseClassHash(s string) (ClassHash, error) {
	f, err := ParseFelt(s)
	return ClassHash{f}, err
}

// ParseTransactionHash parses a hex transaction hash.
func ParseTransactionHash(s string) (TransactionHash, error) {
	f, err := ParseFelt(s)
	return TransactionHash{f}, err
}
