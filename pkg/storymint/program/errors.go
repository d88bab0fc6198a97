package program

import (
	"github.com/pkg/errors"

	"github.com/storymint/storymint-server/pkg/storymint/auth"
	"github.com/storymint/storymint-server/pkg/storymint/balance"
	"github.com/storymint/storymint-server/pkg/storymint/state"
)

// Every operation fails with a specific, named reason and aborts the entire
// atomic transaction; there is no partial success and no local recovery.
var (
	// Authorization errors
	ErrInvalidUpdateAuthority = errors.New("invalid update authority")
	ErrUnauthorizedUpdate     = auth.ErrUnauthorizedUpdate
	ErrInvalidOwner           = auth.ErrInvalidOwner
	ErrInvalidPdaDerivation   = auth.ErrInvalidPdaDerivation
	ErrInvalidAuthority       = errors.New("invalid authority")

	// Capacity errors
	ErrMaxSupplyReached = state.ErrMaxSupplyReached

	// Arithmetic errors
	ErrOverflow  = balance.ErrArithmeticOverflow
	ErrUnderflow = state.ErrSupplyUnderflow

	// Consistency errors
	ErrAlreadyInitialized    = errors.New("collection already initialized")
	ErrInvalidCollection     = errors.New("invalid collection data")
	ErrDuplicateVault        = errors.New("vault already exists for asset")
	ErrInvalidVaultInit      = errors.New("invalid token vault initialization")
	ErrInvalidVaultBalance   = errors.New("invalid vault balance")
	ErrTokenAccountNotClosed = errors.New("token account not closed")
	ErrInsufficientFunds     = errors.New("insufficient funds for minting")

	ErrInvalidMetadataUpdate = errors.New("invalid metadata update")

	// Abuse prevention
	ErrRateLimited     = errors.New("rate limited")
	ErrMintingDisabled = errors.New("minting is disabled")
)
