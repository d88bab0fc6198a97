package balance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storymint/storymint-server/pkg/solana/rent"
	"github.com/storymint/storymint-server/pkg/storymint/state"
)

func TestRequiredVaultBalance(t *testing.T) {
	rentCalculator := rent.NewStaticCalculator(0, map[uint64]uint64{
		state.TokenVaultSize: 890_880,
	})
	calculator := NewCalculator(rentCalculator, 1_000_000_000)

	required, err := calculator.RequiredVaultBalance(state.TokenVaultSize)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_890_880, required)
}

func TestRequiredMintTransfer(t *testing.T) {
	rentCalculator := rent.NewStaticCalculator(0, map[uint64]uint64{
		state.TokenVaultSize: 890_880,
		82:                   1_461_600,
		679:                  5_616_720,
	})
	calculator := NewCalculator(rentCalculator, 1_000_000_000)

	// Each auxiliary account's rent is computed independently and summed
	required, err := calculator.RequiredMintTransfer(state.TokenVaultSize, 82, 679)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_890_880+1_461_600+5_616_720, required)
}

func TestCheckedArithmetic(t *testing.T) {
	_, err := CheckedAdd(math.MaxUint64, 1)
	assert.Equal(t, ErrArithmeticOverflow, err)

	sum, err := CheckedAdd(math.MaxUint64-1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, uint64(math.MaxUint64), sum)

	rentCalculator := rent.NewStaticCalculator(math.MaxUint64, nil)
	calculator := NewCalculator(rentCalculator, 1)

	_, err = calculator.RequiredVaultBalance(state.TokenVaultSize)
	assert.Equal(t, ErrArithmeticOverflow, err)

	calculator = NewCalculator(rent.NewStaticCalculator(math.MaxUint64/2, nil), 0)
	_, err = calculator.RequiredMintTransfer(state.TokenVaultSize, 82, 679)
	assert.Equal(t, ErrArithmeticOverflow, err)
}
