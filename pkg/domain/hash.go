package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HashLength is the byte length of a message digest.
const HashLength = 32

// Hash is a 32-byte digest, used for mint payload digests and their
// personal-message framed forms.
type Hash [HashLength]byte

// ParseHash decodes a 0x-prefixed, 64-digit hex digest.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return h, fmt.Errorf("hash %q: missing 0x prefix", s)
	}
	raw := s[2:]
	if len(raw) != HashLength*2 {
		return h, fmt.Errorf("hash %q: want %d hex digits, got %d", s, HashLength*2, len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return h, fmt.Errorf("hash %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

// HashFromBytes copies a raw 32-byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, fmt.Errorf("hash bytes: want %d, got %d", HashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Bytes returns a copy of the raw digest bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashLength)
	copy(b, h[:])
	return b
}

// Hex renders the digest as 0x-prefixed lowercase hex.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
