package auth

import (
	"testing"

	"gatekeeper/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}})

	digest, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, digest)

	assert.True(t, hasher.Check("s3cret", digest))
	assert.False(t, hasher.Check("wrong", digest))
}

func TestBcryptHasher_SaltsEveryDigest(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}})

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("same password", first))
	assert.True(t, hasher.Check("same password", second))
}

func TestBcryptHasher_MalformedDigestIsMismatch(t *testing.T) {
	hasher := NewBcryptHasher(nil)

	assert.False(t, hasher.Check("anything", []byte("not a bcrypt digest")))
	assert.False(t, hasher.Check("anything", nil))
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"Nil config", nil},
		{"Nil auth section", &config.Config{}},
		{"Cost below range", &config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost - 1}}},
		{"Cost above range", &config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MaxCost + 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := NewBcryptHasher(tt.cfg)

			digest, err := hasher.Hash("pw")
			require.NoError(t, err)

			cost, err := bcrypt.Cost(digest)
			require.NoError(t, err)
			assert.Equal(t, bcrypt.DefaultCost, cost)
		})
	}
}
