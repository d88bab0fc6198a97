package solana

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProgramAddress_Deterministic(t *testing.T) {
	program := make([]byte, ed25519.PublicKeySize)
	program[0] = 1

	a, bump, err := FindProgramAddressAndBump(program, []byte("vault"), []byte("some_asset"))
	require.NoError(t, err)
	require.Len(t, []byte(a), ed25519.PublicKeySize)

	b, err := CreateProgramAddress(program, []byte("vault"), []byte("some_asset"), []byte{bump})
	require.NoError(t, err)
	assert.EqualValues(t, a, b)

	// Same seeds always resolve to the same address
	c, err := FindProgramAddress(program, []byte("vault"), []byte("some_asset"))
	require.NoError(t, err)
	assert.EqualValues(t, a, c)
}

func TestCreateProgramAddress_SeedValidation(t *testing.T) {
	program := make([]byte, ed25519.PublicKeySize)

	var tooMany [][]byte
	for i := 0; i < maxSeeds+1; i++ {
		tooMany = append(tooMany, []byte("s"))
	}
	_, err := CreateProgramAddress(program, tooMany...)
	assert.Equal(t, ErrTooManySeeds, err)

	_, err = CreateProgramAddress(program, make([]byte, maxSeedLength+1))
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)
}

func TestFindProgramAddress_DistinctSeeds(t *testing.T) {
	program := make([]byte, ed25519.PublicKeySize)
	program[0] = 1

	a, err := FindProgramAddress(program, []byte("vault"), []byte("asset_a"))
	require.NoError(t, err)

	b, err := FindProgramAddress(program, []byte("vault"), []byte("asset_b"))
	require.NoError(t, err)

	assert.NotEqualValues(t, a, b)
}
