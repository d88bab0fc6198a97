// Package ledger models the host chain state the escrow program executes
// against: a content-addressed set of lamport accounts. Account addresses are
// derived deterministically by callers, so an insert doubles as a mutual
// exclusion point (the second writer of the same address fails outright).
package ledger

import (
	"errors"
	"time"
)

// SystemOwner is the owner recorded on plain lamport accounts that carry no
// program data (the system program address, a 32-byte zero key in base58).
const SystemOwner = "11111111111111111111111111111111"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")

	ErrInsufficientLamports = errors.New("insufficient lamports")

	ErrAlreadyInTx = errors.New("already executing in existing ledger tx")
)

// Account is a single lamport account. The Data payload is opaque to the
// ledger; record layouts are owned by the program that owns the account.
type Account struct {
	Id uint64

	Address string
	Owner   string

	Lamports uint64
	Data     []byte

	CreatedAt time.Time
}

func (a *Account) Clone() Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)

	return Account{
		Id:        a.Id,
		Address:   a.Address,
		Owner:     a.Owner,
		Lamports:  a.Lamports,
		Data:      data,
		CreatedAt: a.CreatedAt,
	}
}

func (a *Account) CopyTo(dst *Account) {
	dst.Id = a.Id
	dst.Address = a.Address
	dst.Owner = a.Owner
	dst.Lamports = a.Lamports
	dst.Data = a.Data
	dst.CreatedAt = a.CreatedAt
}

func (a *Account) Validate() error {
	if len(a.Address) == 0 {
		return errors.New("address is required")
	}

	if len(a.Owner) == 0 {
		return errors.New("owner is required")
	}

	return nil
}
