package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec("test-secret", "")
	require.NoError(t, err)
	return codec
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec("", "QuotesSharer")
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Sign("u1", "", PurposeAccess, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, PurposeAccess, claims.Purpose)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.Empty(t, claims.TokenID)
}

func TestCodecRefreshCarriesTokenID(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Sign("u1", "tid-1", PurposeRefresh, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "tid-1", claims.TokenID)
	assert.Equal(t, PurposeRefresh, claims.Purpose)
}

func TestCodecExpired(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Sign("u1", "", PurposeAccess, -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodecExpiryBoundary(t *testing.T) {
	codec := newTestCodec(t)

	// exp == iat: by verification time the boundary has passed, and a token
	// checked at or after its expiry must count as expired, not valid.
	signed, err := codec.Sign("u1", "", PurposeAccess, 0)
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodecTamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Sign("u1", "", PurposeAccess, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecTamperedExpiredTokenIsInvalidNotExpired(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Sign("u1", "", PurposeAccess, -time.Minute)
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	// The signature check runs before the expiry claim is trusted.
	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestCodecWrongSecret(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec("other-secret", "")
	require.NoError(t, err)

	signed, err := codec.Sign("u1", "", PurposeAccess, time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecWrongIssuer(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec("test-secret", "SomeoneElse")
	require.NoError(t, err)

	signed, err := other.Sign("u1", "", PurposeAccess, time.Hour)
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecDecodeUnverified(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Sign("u1", "tid-1", PurposeRefresh, -time.Minute)
	require.NoError(t, err)

	// Expired tokens still decode: the store lookup is the authority.
	claims, err := codec.DecodeUnverified(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "tid-1", claims.TokenID)

	_, err = codec.DecodeUnverified("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
