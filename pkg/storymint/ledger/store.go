package ledger

import (
	"context"
)

type Store interface {
	// ExecuteTx runs fn as a single all-or-nothing transaction. Every store
	// call made with the context passed to fn is committed atomically when fn
	// returns nil, and leaves no partial state when fn returns an error.
	//
	// Nested transactions are not supported and fail with ErrAlreadyInTx.
	ExecuteTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Count returns the total count of accounts.
	Count(ctx context.Context) (uint64, error)

	// Get finds the account record for a given address.
	//
	// Returns ErrAccountNotFound if no record exists.
	Get(ctx context.Context, address string) (*Account, error)

	// Create inserts a new account and debits exactly record.Lamports from
	// the funder. The insert is an atomic compare-and-swap on the address.
	//
	// Returns ErrAccountExists if an account already exists at the address,
	// ErrAccountNotFound if the funder doesn't exist, and
	// ErrInsufficientLamports if the funder balance is too low.
	Create(ctx context.Context, record *Account, funder string) error

	// Airdrop credits lamports to an address, creating a data-less system
	// account if one doesn't exist yet.
	Airdrop(ctx context.Context, address string, lamports uint64) error

	// Transfer moves lamports between two existing accounts.
	//
	// Returns ErrAccountNotFound if either account doesn't exist, and
	// ErrInsufficientLamports if the source balance is too low.
	Transfer(ctx context.Context, source, destination string, lamports uint64) error

	// SetData replaces the data payload of an existing account.
	SetData(ctx context.Context, address string, data []byte) error

	// Close sweeps the full account balance to the recipient and deletes the
	// record. The recipient is credited like an Airdrop.
	//
	// Returns ErrAccountNotFound if the account doesn't exist.
	Close(ctx context.Context, address, recipient string) error
}
