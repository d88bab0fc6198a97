// Package balance derives the exact lamport amounts a vault must hold and the
// incremental transfers needed at mint and burn time.
package balance

import (
	"math"

	"github.com/pkg/errors"

	"github.com/storymint/storymint-server/pkg/solana/rent"
)

var ErrArithmeticOverflow = errors.New("arithmetic overflow")

type Calculator struct {
	rent         rent.Calculator
	lockedAmount uint64
}

// NewCalculator returns a Calculator escrowing lockedAmount lamports per
// vault, on top of whatever the rent oracle requires for the vault record.
func NewCalculator(rentCalculator rent.Calculator, lockedAmount uint64) *Calculator {
	return &Calculator{
		rent:         rentCalculator,
		lockedAmount: lockedAmount,
	}
}

func (c *Calculator) LockedAmount() uint64 {
	return c.lockedAmount
}

// RequiredVaultBalance returns the exact balance a vault of the given record
// size must hold: the escrowed amount plus the rent-exempt minimum. This is
// both the amount transferred in at mint time and the value every later
// observation is validated against.
func (c *Calculator) RequiredVaultBalance(vaultSize uint64) (uint64, error) {
	return CheckedAdd(c.lockedAmount, c.rent.MinimumBalance(vaultSize))
}

// RequiredMintTransfer returns the total funding a payer needs for a mint:
// the vault balance plus independently computed rent-exempt minimums for any
// auxiliary accounts created in the same transaction. Each term is computed
// from its own byte size; rent minimums change with record layouts, so
// nothing here is a hard-coded literal.
func (c *Calculator) RequiredMintTransfer(vaultSize uint64, auxiliarySizes ...uint64) (uint64, error) {
	total, err := c.RequiredVaultBalance(vaultSize)
	if err != nil {
		return 0, err
	}

	for _, size := range auxiliarySizes {
		total, err = CheckedAdd(total, c.rent.MinimumBalance(size))
		if err != nil {
			return 0, err
		}
	}

	return total, nil
}

// CheckedAdd adds two lamport amounts, failing on overflow rather than
// wrapping or saturating.
func CheckedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}
