package security_test

import (
	"strings"
	"testing"

	"github.com/srgjo27/driveezzy/internal/platform/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheap = security.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := security.NewArgon2Hasher(cheap)

	encoded, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotContains(t, encoded, "s3cret")
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"), encoded)

	ok, err := h.Verify("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	h := security.NewArgon2Hasher(cheap)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	h := security.NewArgon2Hasher(cheap)

	_, err := h.Verify("x", "plaintext-password")
	assert.ErrorIs(t, err, security.ErrInvalidHash)

	_, err = h.Verify("x", "!!!$abc")
	assert.Error(t, err)
}

func TestArgon2Hasher_VerifiesAfterParamsChange(t *testing.T) {
	encoded, err := security.NewArgon2Hasher(cheap).Hash("s3cret")
	require.NoError(t, err)

	stronger := security.NewArgon2Hasher(security.Argon2Params{Memory: 2048, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32})

	ok, err := stronger.Verify("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = stronger.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_LegacyFormat(t *testing.T) {
	h := security.NewArgon2Hasher(cheap)

	encoded, err := h.Hash("s3cret")
	require.NoError(t, err)
	parts := strings.Split(encoded, "$")
	legacy := parts[4] + "$" + parts[5]

	ok, err := h.Verify("s3cret", legacy)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2Hasher_RejectsBadParams(t *testing.T) {
	h := security.NewArgon2Hasher(cheap)

	for _, encoded := range []string{
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$bogus$c2FsdA$aGFzaA",
	} {
		_, err := h.Verify("x", encoded)
		assert.ErrorIs(t, err, security.ErrInvalidHash, encoded)
	}
}
