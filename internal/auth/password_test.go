package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := HashSecret("s3cret", 1000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "pbkdf2_sha256$1000$"))

	assert.True(t, VerifySecret(hash, "s3cret"))
	assert.False(t, VerifySecret(hash, "wrong"))
}

func TestHashSecretSaltsEachCall(t *testing.T) {
	a, err := HashSecret("same", 1000)
	require.NoError(t, err)
	b, err := HashSecret("same", 1000)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifySecretFailsClosedOnMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"bcrypt$12$abc$def",
		"pbkdf2_sha256$notanumber$c2FsdA$aGFzaA",
		"pbkdf2_sha256$-5$c2FsdA$aGFzaA",
		"pbkdf2_sha256$1000$!!!$aGFzaA",
		"pbkdf2_sha256$1000$c2FsdA$!!!",
		"pbkdf2_sha256$1000$c2FsdA",
	}
	for _, stored := range cases {
		assert.False(t, VerifySecret(stored, "anything"), "stored=%q", stored)
	}
}
