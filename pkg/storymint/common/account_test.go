package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_RoundTrip(t *testing.T) {
	account, err := NewRandomAccount()
	require.NoError(t, err)

	fromString, err := NewAccountFromPublicKeyString(account.PublicKey().ToBase58())
	require.NoError(t, err)
	assert.True(t, account.Equals(fromString))
	assert.Nil(t, fromString.PrivateKey())
}

func TestAccount_SignAndVerify(t *testing.T) {
	account, err := NewRandomAccount()
	require.NoError(t, err)

	message := []byte("update_metadata:some_asset")
	signature, err := account.Sign(message)
	require.NoError(t, err)

	assert.True(t, account.VerifySignature(message, signature))
	assert.False(t, account.VerifySignature([]byte("another message"), signature))

	other, err := NewRandomAccount()
	require.NoError(t, err)
	assert.False(t, other.VerifySignature(message, signature))

	publicOnly, err := NewAccountFromPublicKey(account.PublicKey())
	require.NoError(t, err)
	_, err = publicOnly.Sign(message)
	assert.Error(t, err)
}

func TestAccount_DerivedHasNoPrivateKey(t *testing.T) {
	program, err := NewRandomAccount()
	require.NoError(t, err)

	derived, err := NewDerivedAccount(program, []byte("vault"), []byte("some_asset"))
	require.NoError(t, err)
	assert.Nil(t, derived.PrivateKey())

	again, err := NewDerivedAccount(program, []byte("vault"), []byte("some_asset"))
	require.NoError(t, err)
	assert.True(t, derived.Equals(again))
}
