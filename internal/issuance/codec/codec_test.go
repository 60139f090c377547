package codec_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/internal/crypto"
	"soulbound/internal/issuance/codec"
	"soulbound/pkg/domain"
)

var (
	recipient = domain.MustParseAddress("0x00000000000000000000000000000000000000aa")
	other     = domain.MustParseAddress("0x00000000000000000000000000000000000000bb")
)

func words(ns ...uint64) []*uint256.Int {
	out := make([]*uint256.Int, len(ns))
	for i, n := range ns {
		out[i] = uint256.NewInt(n)
	}
	return out
}

func TestMessageDigest(t *testing.T) {
	base := codec.MessageDigest(recipient, []domain.SkillID{0, 1}, words(10, 20))

	t.Run("is deterministic", func(t *testing.T) {
		again := codec.MessageDigest(recipient, []domain.SkillID{0, 1}, words(10, 20))
		assert.Equal(t, base, again)
	})

	t.Run("matches the packed encoding", func(t *testing.T) {
		packed := recipient.Bytes()
		for _, n := range []uint64{0, 1, 10, 20} {
			w := uint256.NewInt(n).Bytes32()
			packed = append(packed, w[:]...)
		}
		want, err := domain.HashFromBytes(crypto.Keccak256(packed))
		require.NoError(t, err)
		assert.Equal(t, want, base)
	})

	t.Run("every field influences the digest", func(t *testing.T) {
		assert.NotEqual(t, base, codec.MessageDigest(other, []domain.SkillID{0, 1}, words(10, 20)))
		assert.NotEqual(t, base, codec.MessageDigest(recipient, []domain.SkillID{0, 2}, words(10, 20)))
		assert.NotEqual(t, base, codec.MessageDigest(recipient, []domain.SkillID{0, 1}, words(10, 21)))
	})

	t.Run("empty skill set hashes the bare recipient", func(t *testing.T) {
		want, err := domain.HashFromBytes(crypto.Keccak256(recipient.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, want, codec.MessageDigest(recipient, nil, nil))
	})
}

func TestSignedHash(t *testing.T) {
	digest := codec.MessageDigest(recipient, []domain.SkillID{0}, words(5))
	assert.Equal(t, crypto.PersonalHash(digest), codec.SignedHash(recipient, []domain.SkillID{0}, words(5)))
	assert.NotEqual(t, digest, codec.SignedHash(recipient, []domain.SkillID{0}, words(5)))
}
