// Package crypto implements the hashing and signature-recovery primitives the
// registry authenticates mints with: keccak-256 digests, personal-message
// framing, and recoverable secp256k1 signatures in the [R || S || V] wire
// layout. Verification is pure computation; no state and no I/O.
package crypto

import (
	"golang.org/x/crypto/sha3"

	"soulbound/pkg/domain"
)

// personalMessagePrefix domain-separates signatures made over a 32-byte
// digest from any other use of the same key. The decimal suffix declares the
// byte length of what follows.
const personalMessagePrefix = "\x19Ethereum Signed Message:\n32"

// Keccak256 hashes the concatenation of chunks with legacy keccak-256 (the
// pre-NIST padding variant).
func Keccak256(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

// PersonalHash applies personal-message framing to a raw digest: the fixed
// prefix is prepended and the concatenation hashed again. Signatures are
// always made over the framed hash, never the raw digest.
func PersonalHash(digest domain.Hash) domain.Hash {
	var framed domain.Hash
	copy(framed[:], Keccak256([]byte(personalMessagePrefix), digest.Bytes()))
	return framed
}
