package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHashAndCompare(t *testing.T) {
	t.Parallel()
	hasher := NewBcryptHasher()
	verifier := NewBcryptVerifier()

	hashed, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hashed)

	assert.NoError(t, verifier.Compare(hashed, "secret123"))
	assert.Error(t, verifier.Compare(hashed, "wrong-password"))
	assert.Error(t, verifier.Compare("not-a-hash", "secret123"))
}

func TestBcryptHashIsSalted(t *testing.T) {
	t.Parallel()
	hasher := NewBcryptHasher()

	first, err := hasher.Hash("secret123")
	require.NoError(t, err)
	second, err := hasher.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
