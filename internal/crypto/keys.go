package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec"

	"soulbound/pkg/domain"
)

// Sign produces a recoverable signature over hash. Callers are expected to
// pass the personal-message framed hash, not the raw digest.
func Sign(hash domain.Hash, key *btcec.PrivateKey) (Signature, error) {
	compact, err := btcec.SignCompact(btcec.S256(), key, hash.Bytes(), false)
	if err != nil {
		return Signature{}, fmt.Errorf("signing digest: %w", err)
	}
	var sig Signature
	sig.V = compact[0]
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:])
	return sig, nil
}

// GenerateKey creates a fresh secp256k1 private key.
func GenerateKey() (*btcec.PrivateKey, error) {
	key, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("generating secp256k1 key: %w", err)
	}
	return key, nil
}

// ParsePrivateKey decodes an optionally 0x-prefixed 64-digit hex scalar.
func ParsePrivateKey(s string) (*btcec.PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return nil, fmt.Errorf("decoding private key hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(raw))
	}
	key, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
	return key, nil
}

// AddressOf returns the account address of a private key's public half.
func AddressOf(key *btcec.PrivateKey) domain.Address {
	return PubkeyToAddress(key.PubKey())
}
