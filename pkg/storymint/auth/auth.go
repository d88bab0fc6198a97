// Package auth validates signer identity before privileged state transitions.
package auth

import (
	"github.com/pkg/errors"

	"github.com/storymint/storymint-server/pkg/storymint/common"
)

var (
	ErrUnauthorizedUpdate   = errors.New("unauthorized update")
	ErrInvalidOwner         = errors.New("invalid owner signature")
	ErrInvalidPdaDerivation = errors.New("invalid pda derivation")
)

type Verifier struct {
}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// RequireServerAuthority fails unless the signer is the expected server
// authority and cryptographically signed the request message.
func (v *Verifier) RequireServerAuthority(authority, signer *common.Account, message, signature []byte) error {
	if !signer.Equals(authority) {
		return ErrUnauthorizedUpdate
	}

	if !signer.VerifySignature(message, signature) {
		return ErrUnauthorizedUpdate
	}

	return nil
}

// RequireOwner fails unless the signer matches the verified owner of the
// asset and cryptographically signed the request message.
func (v *Verifier) RequireOwner(owner, signer *common.Account, message, signature []byte) error {
	if !signer.Equals(owner) {
		return ErrInvalidOwner
	}

	if !signer.VerifySignature(message, signature) {
		return ErrInvalidOwner
	}

	return nil
}

// RequireProgramAuthority fails unless the account's address matches the
// deterministic derivation from the seeds under the program's namespace.
// This authenticates the program's own keyless authorities: the capability is
// proven by re-deriving the address from public inputs, never by signature.
func (v *Verifier) RequireProgramAuthority(account, program *common.Account, seeds ...[]byte) error {
	derived, err := common.NewDerivedAccount(program, seeds...)
	if err != nil {
		return errors.Wrap(err, "error deriving program authority")
	}

	if !account.Equals(derived) {
		return ErrInvalidPdaDerivation
	}

	return nil
}
