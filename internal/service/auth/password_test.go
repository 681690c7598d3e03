package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	verifier := NewBcryptVerifier()

	hash, err := hasher.Hash("correct-horse-battery")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct-horse-battery", hash)

	assert.NoError(t, verifier.Compare(hash, "correct-horse-battery"))
	assert.Error(t, verifier.Compare(hash, "wrong-password"))
}

func TestNewBcryptHasherCostFallback(t *testing.T) {
	testCases := []struct {
		name     string
		cost     int
		expected int
	}{
		{name: "Valid cost kept", cost: bcrypt.MinCost, expected: bcrypt.MinCost},
		{name: "Zero falls back to default", cost: 0, expected: bcrypt.DefaultCost},
		{name: "Excessive cost falls back to default", cost: 99, expected: bcrypt.DefaultCost},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hasher := NewBcryptHasher(tc.cost)
			assert.Equal(t, tc.expected, hasher.cost)
		})
	}
}
