// Package domain holds the identifier types shared across the registry:
// 20-byte holder addresses, 32-byte digests, and the token/skill id types.
// Keeping them here lets services and stores agree on representations
// without importing each other.
package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte length of a holder address.
const AddressLength = 20

// Address is a 20-byte account address. The zero value is the void
// address: the logical source of a mint and destination of a burn. No
// token is ever held by the void address.
type Address [AddressLength]byte

// ZeroAddress is the void address sentinel.
var ZeroAddress Address

// ParseAddress decodes a 0x-prefixed, 40-digit hex address. Case is not
// significant. The prefix is required so truncated or misfielded inputs
// fail loudly instead of half-parsing.
func ParseAddress(s string) (Address, error) {
	var a Address
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return a, fmt.Errorf("address %q: missing 0x prefix", s)
	}
	raw := s[2:]
	if len(raw) != AddressLength*2 {
		return a, fmt.Errorf("address %q: want %d hex digits, got %d", s, AddressLength*2, len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return a, fmt.Errorf("address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress for literals in tests and wiring code.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromBytes copies a raw 20-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("address bytes: want %d, got %d", AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// IsZero reports whether a is the void address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

// Hex renders the address as 0x-prefixed lowercase hex.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// MarshalText implements encoding.TextMarshaler so addresses serialize as
// hex strings in JSON payloads and map keys.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
