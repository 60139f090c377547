package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// SignatureLength is the encoded size of a recoverable signature: two
// 32-byte scalars followed by a one-byte recovery indicator.
const SignatureLength = 65

// ErrInvalidSignatureLength rejects signature blobs that are not exactly
// SignatureLength bytes.
var ErrInvalidSignatureLength = dErrors.Reason(dErrors.CodeValidation,
	"invalid_signature_length", "signature must be exactly 65 bytes")

// Signature is a recoverable secp256k1 signature. The wire layout is
// [R || S || V]; V is held normalized to 27/28.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// ParseSignature decodes a 65-byte [R || S || V] blob. Recovery indicators
// below 27 are offset by +27, accommodating signers that emit the 0/1 form.
func ParseSignature(raw []byte) (Signature, error) {
	if len(raw) != SignatureLength {
		return Signature{}, ErrInvalidSignatureLength
	}
	var sig Signature
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])
	sig.V = normalizeV(raw[64])
	return sig, nil
}

// ParseSignatureHex decodes an optionally 0x-prefixed, 130-digit hex
// signature.
func ParseSignatureHex(s string) (Signature, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return Signature{}, fmt.Errorf("decoding signature hex: %w", err)
	}
	return ParseSignature(raw)
}

// NewSignature assembles a signature from its three components, normalizing
// the recovery indicator.
func NewSignature(v byte, r, s domain.Hash) Signature {
	return Signature{R: r, S: s, V: normalizeV(v)}
}

func normalizeV(v byte) byte {
	if v < 27 {
		return v + 27
	}
	return v
}

// Bytes encodes the signature in the [R || S || V] wire layout.
func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out[:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

// Hex renders the signature as 0x-prefixed lowercase hex.
func (s Signature) Hex() string {
	return "0x" + hex.EncodeToString(s.Bytes())
}

// compact rearranges the signature into the [V || R || S] layout the
// recovery routine expects.
func (s Signature) compact() []byte {
	out := make([]byte, SignatureLength)
	out[0] = s.V
	copy(out[1:33], s.R[:])
	copy(out[33:], s.S[:])
	return out
}

// RecoverAddress recovers the address that signed hash.
func RecoverAddress(hash domain.Hash, sig Signature) (domain.Address, error) {
	pub, _, err := btcec.RecoverCompact(btcec.S256(), sig.compact(), hash.Bytes())
	if err != nil {
		return domain.ZeroAddress, fmt.Errorf("recovering public key: %w", err)
	}
	return PubkeyToAddress(pub), nil
}

// Verify reports whether sig over hash was produced by signer. Recovery
// failure and signer mismatch both report false, not an error: an unsound
// signature is an answer, not a fault.
func Verify(hash domain.Hash, sig Signature, signer domain.Address) bool {
	recovered, err := RecoverAddress(hash, sig)
	if err != nil {
		return false
	}
	return recovered == signer
}

// PubkeyToAddress derives the account address from a public key: the low 20
// bytes of the keccak hash of the uncompressed 64-byte curve point.
func PubkeyToAddress(pub *btcec.PublicKey) domain.Address {
	raw := pub.SerializeUncompressed()
	sum := Keccak256(raw[1:])
	var addr domain.Address
	copy(addr[:], sum[12:])
	return addr
}
