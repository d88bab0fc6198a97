package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/storymint/storymint-server/pkg/storymint/ledger"

	pgutil "github.com/storymint/storymint-server/pkg/database/postgres"
)

const (
	accountTableName = "storymint__core_ledgeraccount"
)

type accountModel struct {
	Id        sql.NullInt64 `db:"id"`
	Address   string        `db:"address"`
	Owner     string        `db:"owner"`
	Lamports  uint64        `db:"lamports"`
	Data      []byte        `db:"data"`
	CreatedAt time.Time     `db:"created_at"`
}

func toAccountModel(obj *ledger.Account) (*accountModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = time.Now().UTC()
	}

	return &accountModel{
		Address:   obj.Address,
		Owner:     obj.Owner,
		Lamports:  obj.Lamports,
		Data:      obj.Data,
		CreatedAt: obj.CreatedAt,
	}, nil
}

func fromAccountModel(obj *accountModel) *ledger.Account {
	return &ledger.Account{
		Id:        uint64(obj.Id.Int64),
		Address:   obj.Address,
		Owner:     obj.Owner,
		Lamports:  obj.Lamports,
		Data:      obj.Data,
		CreatedAt: obj.CreatedAt.UTC(),
	}
}

func (m *accountModel) dbCreate(ctx context.Context, db *sqlx.DB, funder string) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		if err := dbDebit(ctx, tx, funder, m.Lamports); err != nil {
			return err
		}

		query := `INSERT INTO ` + accountTableName + `
			(address, owner, lamports, data, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING
				id, address, owner, lamports, data, created_at`

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.Data,
			m.CreatedAt,
		).StructScan(m)

		return pgutil.CheckUniqueViolation(err, ledger.ErrAccountExists)
	})
}

// Reads execute within the ambient transaction, when one is scoped to the
// context, so they observe the transaction's own uncommitted writes.
func dbGetAccount(ctx context.Context, db *sqlx.DB, address string) (*accountModel, error) {
	res := &accountModel{}

	query := `SELECT id, address, owner, lamports, data, created_at
		FROM ` + accountTableName + `
		WHERE address = $1
		LIMIT 1`

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetCount(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var res uint64

	query := `SELECT COUNT(*) FROM ` + accountTableName
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &res, query)
	})
	if err != nil {
		return 0, err
	}

	return res, nil
}

// dbDebit subtracts lamports from an existing account, failing when the
// balance is too low. The UPDATE takes the row lock, so concurrent debits of
// the same account are serialized by the database.
func dbDebit(ctx context.Context, tx *sqlx.Tx, address string, lamports uint64) error {
	query := `UPDATE ` + accountTableName + `
		SET lamports = lamports - $2
		WHERE address = $1 AND lamports >= $2
		RETURNING id`

	var id int64
	err := tx.QueryRowxContext(ctx, query, address, lamports).Scan(&id)
	if pgutil.IsNoRows(err) {
		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM ` + accountTableName + ` WHERE address = $1)`
		if err := tx.GetContext(ctx, &exists, existsQuery, address); err != nil {
			return err
		}

		if !exists {
			return ledger.ErrAccountNotFound
		}
		return ledger.ErrInsufficientLamports
	}
	return err
}

// dbCredit adds lamports to an account, creating a data-less system account
// when none exists at the address.
func dbCredit(ctx context.Context, tx *sqlx.Tx, address string, lamports uint64) error {
	query := `INSERT INTO ` + accountTableName + `
		(address, owner, lamports, data, created_at)
		VALUES ($1, $2, $3, NULL, $4)
		ON CONFLICT (address)
		DO UPDATE
			SET lamports = ` + accountTableName + `.lamports + $3`

	_, err := tx.ExecContext(ctx, query, address, ledger.SystemOwner, lamports, time.Now().UTC())
	return err
}

func dbAirdrop(ctx context.Context, db *sqlx.DB, address string, lamports uint64) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		return dbCredit(ctx, tx, address, lamports)
	})
}

func dbTransfer(ctx context.Context, db *sqlx.DB, source, destination string, lamports uint64) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM ` + accountTableName + ` WHERE address = $1)`
		if err := tx.GetContext(ctx, &exists, existsQuery, destination); err != nil {
			return err
		}
		if !exists {
			return ledger.ErrAccountNotFound
		}

		if err := dbDebit(ctx, tx, source, lamports); err != nil {
			return err
		}
		return dbCredit(ctx, tx, destination, lamports)
	})
}

func dbSetData(ctx context.Context, db *sqlx.DB, address string, data []byte) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + accountTableName + `
			SET data = $2
			WHERE address = $1
			RETURNING id`

		var id int64
		err := tx.QueryRowxContext(ctx, query, address, data).Scan(&id)
		return pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	})
}

func dbClose(ctx context.Context, db *sqlx.DB, address, recipient string) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `DELETE FROM ` + accountTableName + `
			WHERE address = $1
			RETURNING lamports`

		var balance uint64
		err := tx.QueryRowxContext(ctx, query, address).Scan(&balance)
		if err != nil {
			return pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
		}

		return dbCredit(ctx, tx, recipient, balance)
	})
}
