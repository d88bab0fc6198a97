package tests

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storymint/storymint-server/pkg/storymint/ledger"
)

func RunTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testRoundTrip,
		testCreate,
		testTransfer,
		testSetData,
		testClose,
		testExecuteTx,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	actual, err := s.Get(ctx, "test_address")
	require.Error(t, err)
	assert.Equal(t, ledger.ErrAccountNotFound, err)
	assert.Nil(t, actual)

	require.NoError(t, s.Airdrop(ctx, "test_funder", 10_000_000))

	expected := ledger.Account{
		Address:  "test_address",
		Owner:    "test_program",
		Lamports: 1_000_000,
		Data:     []byte("test_data"),
	}
	require.NoError(t, s.Create(ctx, &expected, "test_funder"))

	actual, err = s.Get(ctx, "test_address")
	require.NoError(t, err)
	assert.Equal(t, expected.Address, actual.Address)
	assert.Equal(t, expected.Owner, actual.Owner)
	assert.EqualValues(t, 1_000_000, actual.Lamports)
	assert.Equal(t, expected.Data, actual.Data)
	assert.False(t, actual.CreatedAt.IsZero())

	funder, err := s.Get(ctx, "test_funder")
	require.NoError(t, err)
	assert.EqualValues(t, 9_000_000, funder.Lamports)
	assert.Equal(t, ledger.SystemOwner, funder.Owner)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func testCreate(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	record := ledger.Account{
		Address:  "test_address",
		Owner:    "test_program",
		Lamports: 1_000_000,
	}

	// Funder doesn't exist yet
	err := s.Create(ctx, &record, "test_funder")
	assert.Equal(t, ledger.ErrAccountNotFound, errors.Cause(err))

	// Funder balance too low
	require.NoError(t, s.Airdrop(ctx, "test_funder", 999_999))
	err = s.Create(ctx, &record, "test_funder")
	assert.Equal(t, ledger.ErrInsufficientLamports, errors.Cause(err))

	_, err = s.Get(ctx, "test_address")
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	// Exactly enough
	require.NoError(t, s.Airdrop(ctx, "test_funder", 1))
	require.NoError(t, s.Create(ctx, &record, "test_funder"))

	funder, err := s.Get(ctx, "test_funder")
	require.NoError(t, err)
	assert.EqualValues(t, 0, funder.Lamports)

	// The address insert is a compare-and-swap; a second create for the same
	// address fails outright
	require.NoError(t, s.Airdrop(ctx, "test_funder", 5_000_000))
	duplicate := ledger.Account{
		Address:  "test_address",
		Owner:    "test_program",
		Lamports: 1_000_000,
	}
	err = s.Create(ctx, &duplicate, "test_funder")
	assert.Equal(t, ledger.ErrAccountExists, errors.Cause(err))

	funder, err = s.Get(ctx, "test_funder")
	require.NoError(t, err)
	assert.EqualValues(t, 5_000_000, funder.Lamports)
}

func testTransfer(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	err := s.Transfer(ctx, "test_source", "test_destination", 100)
	assert.Equal(t, ledger.ErrAccountNotFound, errors.Cause(err))

	require.NoError(t, s.Airdrop(ctx, "test_source", 1_000))
	err = s.Transfer(ctx, "test_source", "test_destination", 100)
	assert.Equal(t, ledger.ErrAccountNotFound, errors.Cause(err))

	require.NoError(t, s.Airdrop(ctx, "test_destination", 0))

	err = s.Transfer(ctx, "test_source", "test_destination", 1_001)
	assert.Equal(t, ledger.ErrInsufficientLamports, errors.Cause(err))

	require.NoError(t, s.Transfer(ctx, "test_source", "test_destination", 400))

	source, err := s.Get(ctx, "test_source")
	require.NoError(t, err)
	assert.EqualValues(t, 600, source.Lamports)

	destination, err := s.Get(ctx, "test_destination")
	require.NoError(t, err)
	assert.EqualValues(t, 400, destination.Lamports)
}

func testSetData(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	err := s.SetData(ctx, "test_address", []byte("updated"))
	assert.Equal(t, ledger.ErrAccountNotFound, errors.Cause(err))

	require.NoError(t, s.Airdrop(ctx, "test_funder", 1_000_000))
	record := ledger.Account{
		Address:  "test_address",
		Owner:    "test_program",
		Lamports: 500_000,
		Data:     []byte("initial"),
	}
	require.NoError(t, s.Create(ctx, &record, "test_funder"))

	require.NoError(t, s.SetData(ctx, "test_address", []byte("updated")))

	actual, err := s.Get(ctx, "test_address")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), actual.Data)
	assert.EqualValues(t, 500_000, actual.Lamports)
}

func testClose(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	err := s.Close(ctx, "test_address", "test_recipient")
	assert.Equal(t, ledger.ErrAccountNotFound, errors.Cause(err))

	require.NoError(t, s.Airdrop(ctx, "test_funder", 1_000_000))
	record := ledger.Account{
		Address:  "test_address",
		Owner:    "test_program",
		Lamports: 750_000,
		Data:     []byte("test_data"),
	}
	require.NoError(t, s.Create(ctx, &record, "test_funder"))

	require.NoError(t, s.Close(ctx, "test_address", "test_recipient"))

	_, err = s.Get(ctx, "test_address")
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	recipient, err := s.Get(ctx, "test_recipient")
	require.NoError(t, err)
	assert.EqualValues(t, 750_000, recipient.Lamports)
}

func testExecuteTx(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	require.NoError(t, s.Airdrop(ctx, "test_funder", 10_000_000))

	// A failing transaction leaves no partial state
	induced := errors.New("induced failure")
	err := s.ExecuteTx(ctx, func(ctx context.Context) error {
		record := ledger.Account{
			Address:  "test_address",
			Owner:    "test_program",
			Lamports: 1_000_000,
		}
		if err := s.Create(ctx, &record, "test_funder"); err != nil {
			return err
		}
		if err := s.Airdrop(ctx, "test_other", 123); err != nil {
			return err
		}
		return induced
	})
	assert.Equal(t, induced, errors.Cause(err))

	_, err = s.Get(ctx, "test_address")
	assert.Equal(t, ledger.ErrAccountNotFound, err)
	_, err = s.Get(ctx, "test_other")
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	funder, err := s.Get(ctx, "test_funder")
	require.NoError(t, err)
	assert.EqualValues(t, 10_000_000, funder.Lamports)

	// A successful transaction commits everything
	err = s.ExecuteTx(ctx, func(ctx context.Context) error {
		record := ledger.Account{
			Address:  "test_address",
			Owner:    "test_program",
			Lamports: 1_000_000,
		}
		if err := s.Create(ctx, &record, "test_funder"); err != nil {
			return err
		}

		// Reads within the transaction observe its writes
		actual, err := s.Get(ctx, "test_address")
		if err != nil {
			return err
		}
		if actual.Lamports != 1_000_000 {
			return errors.New("unexpected balance within tx")
		}

		return s.Transfer(ctx, "test_address", "test_funder", 400_000)
	})
	require.NoError(t, err)

	actual, err := s.Get(ctx, "test_address")
	require.NoError(t, err)
	assert.EqualValues(t, 600_000, actual.Lamports)

	funder, err = s.Get(ctx, "test_funder")
	require.NoError(t, err)
	assert.EqualValues(t, 9_400_000, funder.Lamports)

	// Nested transactions are rejected
	err = s.ExecuteTx(ctx, func(ctx context.Context) error {
		return s.ExecuteTx(ctx, func(ctx context.Context) error {
			return nil
		})
	})
	assert.Equal(t, ledger.ErrAlreadyInTx, errors.Cause(err))
}
