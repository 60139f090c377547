// Package codec builds the canonical mint message the authority signs.
// The layout is the packed EVM encoding: the 20 raw recipient bytes,
// then every skill id and every value as a 32-byte big-endian word, in
// that order. Authorities signing with standard EVM tooling produce
// byte-identical digests.
package codec

import (
	"github.com/holiman/uint256"

	"soulbound/internal/crypto"
	"soulbound/pkg/domain"
)

// wordSize is the width of one packed integer.
const wordSize = 32

// MessageDigest hashes the canonical encoding of a mint payload. This is
// the raw digest; signatures are made over its personal-message framed
// form (crypto.PersonalHash).
func MessageDigest(recipient domain.Address, skillIDs []domain.SkillID, amounts []*uint256.Int) domain.Hash {
	packed := make([]byte, 0, domain.AddressLength+(len(skillIDs)+len(amounts))*wordSize)
	packed = append(packed, recipient[:]...)
	for _, id := range skillIDs {
		packed = appendWord(packed, uint256.NewInt(uint64(id)))
	}
	for _, amount := range amounts {
		packed = appendWord(packed, amount)
	}

	var digest domain.Hash
	copy(digest[:], crypto.Keccak256(packed))
	return digest
}

// SignedHash is the personal-message framed digest the authority actually
// signs.
func SignedHash(recipient domain.Address, skillIDs []domain.SkillID, amounts []*uint256.Int) domain.Hash {
	return crypto.PersonalHash(MessageDigest(recipient, skillIDs, amounts))
}

func appendWord(dst []byte, word *uint256.Int) []byte {
	buf := word.Bytes32()
	return append(dst, buf[:]...)
}
