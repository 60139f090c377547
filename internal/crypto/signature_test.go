package crypto_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/internal/crypto"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

func TestKeccak256KnownVectors(t *testing.T) {
	// Legacy keccak, not SHA3-256: the empty-input digest differs between
	// the two and pins the padding variant.
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(crypto.Keccak256(nil)))

	assert.Equal(t,
		"4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		hex.EncodeToString(crypto.Keccak256([]byte("abc"))))

	// Chunked input hashes the same as the concatenation.
	assert.Equal(t,
		crypto.Keccak256([]byte("abc")),
		crypto.Keccak256([]byte("a"), []byte("bc")))
}

func TestPersonalHashFraming(t *testing.T) {
	var digest domain.Hash
	copy(digest[:], crypto.Keccak256([]byte("payload")))

	framed := crypto.PersonalHash(digest)

	var want domain.Hash
	copy(want[:], crypto.Keccak256([]byte("\x19Ethereum Signed Message:\n32"), digest.Bytes()))
	assert.Equal(t, want, framed)
	assert.NotEqual(t, digest, framed)
}

func TestSignAndVerify(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.AddressOf(key)

	var digest domain.Hash
	copy(digest[:], crypto.Keccak256([]byte("some payload")))
	framed := crypto.PersonalHash(digest)

	sig, err := crypto.Sign(framed, key)
	require.NoError(t, err)

	t.Run("valid signature verifies", func(t *testing.T) {
		assert.True(t, crypto.Verify(framed, sig, signer))
	})

	t.Run("recovers the signing address", func(t *testing.T) {
		recovered, err := crypto.RecoverAddress(framed, sig)
		require.NoError(t, err)
		assert.Equal(t, signer, recovered)
	})

	t.Run("wrong signer address fails", func(t *testing.T) {
		other := domain.MustParseAddress("0x00000000000000000000000000000000000000aa")
		assert.False(t, crypto.Verify(framed, sig, other))
	})

	t.Run("different payload fails", func(t *testing.T) {
		var otherDigest domain.Hash
		copy(otherDigest[:], crypto.Keccak256([]byte("other payload")))
		assert.False(t, crypto.Verify(crypto.PersonalHash(otherDigest), sig, signer))
	})

	t.Run("signature from another key fails", func(t *testing.T) {
		otherKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		otherSig, err := crypto.Sign(framed, otherKey)
		require.NoError(t, err)
		assert.False(t, crypto.Verify(framed, otherSig, signer))
	})

	t.Run("flipped scalar byte fails", func(t *testing.T) {
		tampered := sig
		tampered.S[7] ^= 0x01
		assert.False(t, crypto.Verify(framed, tampered, signer))
	})
}

func TestParseSignature(t *testing.T) {
	t.Run("rejects wrong lengths", func(t *testing.T) {
		for _, n := range []int{0, 64, 66, 130} {
			_, err := crypto.ParseSignature(make([]byte, n))
			require.Error(t, err, "length %d", n)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.ErrorIs(t, err, crypto.ErrInvalidSignatureLength)
		}
	})

	t.Run("normalizes recovery indicator", func(t *testing.T) {
		raw := make([]byte, crypto.SignatureLength)
		raw[64] = 0
		sig, err := crypto.ParseSignature(raw)
		require.NoError(t, err)
		assert.Equal(t, byte(27), sig.V)

		raw[64] = 1
		sig, err = crypto.ParseSignature(raw)
		require.NoError(t, err)
		assert.Equal(t, byte(28), sig.V)

		raw[64] = 28
		sig, err = crypto.ParseSignature(raw)
		require.NoError(t, err)
		assert.Equal(t, byte(28), sig.V)
	})

	t.Run("round trips through bytes and hex", func(t *testing.T) {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)

		var digest domain.Hash
		copy(digest[:], crypto.Keccak256([]byte("round trip")))
		sig, err := crypto.Sign(crypto.PersonalHash(digest), key)
		require.NoError(t, err)

		back, err := crypto.ParseSignature(sig.Bytes())
		require.NoError(t, err)
		assert.Equal(t, sig, back)

		fromHex, err := crypto.ParseSignatureHex(sig.Hex())
		require.NoError(t, err)
		assert.Equal(t, sig, fromHex)
	})
}

func TestParsePrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	raw := key.Serialize()
	require.Len(t, raw, 32)

	parsed, err := crypto.ParsePrivateKey("0x" + hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, crypto.AddressOf(key), crypto.AddressOf(parsed))
	assert.True(t, bytes.Equal(raw, parsed.Serialize()))

	_, err = crypto.ParsePrivateKey("0x1234")
	assert.Error(t, err)

	_, err = crypto.ParsePrivateKey("zz")
	assert.Error(t, err)
}

func TestSignatureComponentsOrder(t *testing.T) {
	var r, s domain.Hash
	r[0] = 0xaa
	s[0] = 0xbb

	sig := crypto.NewSignature(1, r, s)
	raw := sig.Bytes()

	assert.Equal(t, byte(0xaa), raw[0])
	assert.Equal(t, byte(0xbb), raw[32])
	assert.Equal(t, byte(28), raw[64])
}
