package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var signer = domain.MustParseAddress("0x1111111111111111111111111111111111111111")
var expiresIn = time.Hour

func Test_GenerateSignerToken(t *testing.T) {
	token, err := jwtService.GenerateSignerToken(signer, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	addr, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, signer, addr)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("other-signing-key", "test-issuer", "test-audience")
	token, err := other.GenerateSignerToken(signer, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_Expired(t *testing.T) {
	token, err := jwtService.GenerateSignerToken(signer, -time.Minute)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}
