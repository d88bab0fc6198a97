package program

import (
	"bytes"
	"context"

	"github.com/pkg/errors"

	"github.com/storymint/storymint-server/pkg/storymint/balance"
	"github.com/storymint/storymint-server/pkg/storymint/common"
	"github.com/storymint/storymint-server/pkg/storymint/ledger"
	"github.com/storymint/storymint-server/pkg/storymint/state"
)

// createVault inserts the vault record at its derived address, funded with
// exactly the required balance. The insert is an atomic compare-and-swap, so
// two mints racing on the same asset serialize here and exactly one succeeds.
func (p *Program) createVault(ctx context.Context, calc *balance.Calculator, program, asset *common.Account, funder string) (*common.Account, error) {
	vaultAddress, err := state.GetTokenVaultAddress(program, asset)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving vault address")
	}

	required, err := calc.RequiredVaultBalance(state.TokenVaultSize)
	if err != nil {
		return nil, err
	}

	record := &ledger.Account{
		Address:  vaultAddress.PublicKey().ToBase58(),
		Owner:    program.PublicKey().ToBase58(),
		Lamports: required,
		Data:     state.TokenVault{Asset: asset.PublicKey().ToBytes()}.Marshal(),
	}

	err = p.accounts.Create(ctx, record, funder)
	switch err {
	case nil:
		return vaultAddress, nil
	case ledger.ErrAccountExists:
		return nil, ErrDuplicateVault
	case ledger.ErrAccountNotFound, ledger.ErrInsufficientLamports:
		return nil, ErrInsufficientFunds
	default:
		return nil, errors.Wrap(err, "error creating vault account")
	}
}

// getVault loads the vault record backing an asset and validates its binding.
func (p *Program) getVault(ctx context.Context, program, asset *common.Account) (*common.Account, *ledger.Account, error) {
	vaultAddress, err := state.GetTokenVaultAddress(program, asset)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error deriving vault address")
	}

	record, err := p.accounts.Get(ctx, vaultAddress.PublicKey().ToBase58())
	if err == ledger.ErrAccountNotFound {
		return nil, nil, ErrInvalidVaultInit
	} else if err != nil {
		return nil, nil, errors.Wrap(err, "error getting vault account")
	}

	var vault state.TokenVault
	if err := vault.Unmarshal(record.Data); err != nil {
		return nil, nil, ErrInvalidVaultInit
	}

	if !bytes.Equal(vault.Asset, asset.PublicKey().ToBytes()) {
		return nil, nil, ErrInvalidVaultInit
	}

	return vaultAddress, record, nil
}

// validateVaultBalance rejects any observed balance other than the exact
// required amount. Both a shortfall and an excess indicate tampering.
func (p *Program) validateVaultBalance(calc *balance.Calculator, record *ledger.Account) error {
	required, err := calc.RequiredVaultBalance(state.TokenVaultSize)
	if err != nil {
		return err
	}

	if record.Lamports != required {
		return ErrInvalidVaultBalance
	}
	return nil
}
