package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/storymint/storymint-server/pkg/storymint/ledger"

	pgutil "github.com/storymint/storymint-server/pkg/database/postgres"
)

type store struct {
	db *sqlx.DB
}

func New(db *sql.DB) ledger.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// ExecuteTx runs fn within a single DB transaction scoped to the context.
func (s *store) ExecuteTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := pgutil.ExecuteTxWithinCtx(ctx, s.db, sql.LevelDefault, fn)
	if err == pgutil.ErrAlreadyInTx {
		return ledger.ErrAlreadyInTx
	}
	return err
}

// Count returns the total count of accounts.
func (s *store) Count(ctx context.Context) (uint64, error) {
	return dbGetCount(ctx, s.db)
}

// Get finds the account record for a given address.
func (s *store) Get(ctx context.Context, address string) (*ledger.Account, error) {
	obj, err := dbGetAccount(ctx, s.db, address)
	if err != nil {
		return nil, err
	}

	return fromAccountModel(obj), nil
}

// Create inserts a new account funded by an exact debit from the funder.
func (s *store) Create(ctx context.Context, record *ledger.Account, funder string) error {
	obj, err := toAccountModel(record)
	if err != nil {
		return err
	}

	if err := obj.dbCreate(ctx, s.db, funder); err != nil {
		return err
	}

	res := fromAccountModel(obj)
	res.CopyTo(record)

	return nil
}

// Airdrop credits lamports to an address.
func (s *store) Airdrop(ctx context.Context, address string, lamports uint64) error {
	return dbAirdrop(ctx, s.db, address, lamports)
}

// Transfer moves lamports between two existing accounts.
func (s *store) Transfer(ctx context.Context, source, destination string, lamports uint64) error {
	return dbTransfer(ctx, s.db, source, destination, lamports)
}

// SetData replaces the data payload of an existing account.
func (s *store) SetData(ctx context.Context, address string, data []byte) error {
	return dbSetData(ctx, s.db, address, data)
}

// Close sweeps the full account balance to the recipient and deletes the record.
func (s *store) Close(ctx context.Context, address, recipient string) error {
	return dbClose(ctx, s.db, address, recipient)
}
