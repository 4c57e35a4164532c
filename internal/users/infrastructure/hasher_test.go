package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	cases := []struct {
		desc     string
		hash     string
		password string
		matches  bool
		err      bool
	}{
		{desc: "matching password", hash: hash, password: "s3cret", matches: true},
		{desc: "wrong password", hash: hash, password: "other"},
		{desc: "corrupted hash", hash: "not-a-hash", password: "s3cret", err: true},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			matches, err := hasher.Compare(tc.hash, tc.password)
			assert.Equal(t, tc.matches, matches)
			assert.Equal(t, tc.err, err != nil)
		})
	}
}

func TestBcryptHasherFallsBackToDefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(0).(*bcryptHasher)
	assert.Equal(t, DefaultHashCost, hasher.cost)
}
