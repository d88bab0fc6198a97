package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storymint/storymint-server/pkg/storymint/common"
)

func TestRequireServerAuthority(t *testing.T) {
	verifier := NewVerifier()

	authority, err := common.NewRandomAccount()
	require.NoError(t, err)
	attacker, err := common.NewRandomAccount()
	require.NoError(t, err)

	message := []byte("update_metadata:some_asset")

	signature, err := authority.Sign(message)
	require.NoError(t, err)
	assert.NoError(t, verifier.RequireServerAuthority(authority, authority, message, signature))

	// Wrong signer
	attackerSignature, err := attacker.Sign(message)
	require.NoError(t, err)
	assert.Equal(t, ErrUnauthorizedUpdate, verifier.RequireServerAuthority(authority, attacker, message, attackerSignature))

	// Right signer, signature over a different message
	otherSignature, err := authority.Sign([]byte("another message"))
	require.NoError(t, err)
	assert.Equal(t, ErrUnauthorizedUpdate, verifier.RequireServerAuthority(authority, authority, message, otherSignature))

	// Right signer, garbage signature
	assert.Equal(t, ErrUnauthorizedUpdate, verifier.RequireServerAuthority(authority, authority, message, nil))
}

func TestRequireOwner(t *testing.T) {
	verifier := NewVerifier()

	owner, err := common.NewRandomAccount()
	require.NoError(t, err)
	attacker, err := common.NewRandomAccount()
	require.NoError(t, err)

	message := []byte("burn_and_withdraw:some_asset")

	signature, err := owner.Sign(message)
	require.NoError(t, err)
	assert.NoError(t, verifier.RequireOwner(owner, owner, message, signature))

	attackerSignature, err := attacker.Sign(message)
	require.NoError(t, err)
	assert.Equal(t, ErrInvalidOwner, verifier.RequireOwner(owner, attacker, message, attackerSignature))
}

func TestRequireProgramAuthority(t *testing.T) {
	verifier := NewVerifier()

	program, err := common.NewRandomAccount()
	require.NoError(t, err)
	collection, err := common.NewRandomAccount()
	require.NoError(t, err)

	derived, err := common.NewDerivedAccount(program, []byte("mint_authority"), collection.PublicKey().ToBytes())
	require.NoError(t, err)

	assert.NoError(t, verifier.RequireProgramAuthority(derived, program, []byte("mint_authority"), collection.PublicKey().ToBytes()))

	// Different seeds derive a different authority
	assert.Equal(t, ErrInvalidPdaDerivation, verifier.RequireProgramAuthority(derived, program, []byte("mint_authority"), program.PublicKey().ToBytes()))

	// An arbitrary account can't stand in for the derived authority
	imposter, err := common.NewRandomAccount()
	require.NoError(t, err)
	assert.Equal(t, ErrInvalidPdaDerivation, verifier.RequireProgramAuthority(imposter, program, []byte("mint_authority"), collection.PublicKey().ToBytes()))
}
