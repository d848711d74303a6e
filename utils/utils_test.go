package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.False(t, IsLegacyHash(hash))

	ok, err := VerifyPassword(hash, "s3cret!")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, IsLegacyHash(string(legacy)))

	ok, err := VerifyPassword(string(legacy), "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(string(legacy), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	n := GenerateOrderNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^ORD-[0-9A-Z]+-[0-9A-Z]{5}$`), n)
	assert.Contains(t, n, "ORD-LOYW3V28-")
	assert.NotEqual(t, n, GenerateOrderNumber(now))
}

func TestDistanceKm(t *testing.T) {
	assert.InDelta(t, 0, DistanceKm(40.7, -74.0, 40.7, -74.0), 1e-9)
	// one degree of latitude is ~111.2 km
	assert.InDelta(t, 111.19, DistanceKm(0, 0, 1, 0), 0.05)
}

func TestResetToken(t *testing.T) {
	token, digest, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, digest, HashToken(token))
	assert.NotEqual(t, token, digest)
}
