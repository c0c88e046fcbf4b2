package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, grant, err := signer.Generate("exp-1", "bookings/2026/export.csv")
	require.NoError(t, err)

	parsed, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, grant.ID, parsed.ID)
	assert.True(t, grant.ExpiresAt.Equal(parsed.ExpiresAt))
	assert.Equal(t, "bookings/2026/export.csv", parsed.Path)
}

func TestSignedURLSignerExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return base }
	token, _, err := signer.Generate("exp-1", "a.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = signer.Parse(token, false)
	assert.ErrorIs(t, err, ErrTokenExpired)

	grant, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", grant.Path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("exp-1", "a.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "exp-2"
	_, err = signer.Parse(strings.Join(parts, "."), false)
	assert.ErrorIs(t, err, ErrTokenSignature)

	_, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	assert.ErrorIs(t, err, ErrTokenSignature)

	_, err = signer.Parse("garbage", false)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
