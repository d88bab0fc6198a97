// Package rent computes the minimum balance required to keep an account
// exempt from rent collection.
package rent

// Parameters mirroring the Solana SDK's Rent sysvar defaults.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/rent.rs
const (
	// DefaultLamportsPerByteYear is the default rental rate in lamports/byte-year.
	//
	// This calculation is based on:
	// - 10^9 lamports per SOL
	// - $1 per SOL
	// - $0.01 per megabyte day
	// - $3.65 per megabyte year
	DefaultLamportsPerByteYear = 1_000_000_000 / 100 * 365 / (1024 * 1024)

	// DefaultExemptionThreshold is the default amount of time (in years) the
	// balance has to include rent for the account to be rent exempt.
	DefaultExemptionThreshold = 2.0

	// AccountStorageOverhead is the account storage overhead (in bytes) for
	// calculation of base rent.
	AccountStorageOverhead = 128
)

// Calculator computes the minimum balance an account of a given data size must
// hold to be exempt from rent collection. It stands in for the host-provided
// rent sysvar.
type Calculator interface {
	// MinimumBalance returns the minimum balance, in lamports, for rent
	// exemption of an account holding dataSize bytes.
	MinimumBalance(dataSize uint64) uint64
}

type calculator struct {
	lamportsPerByteYear uint64
	exemptionThreshold  float64
}

// NewCalculator returns a Calculator with the provided rental rate and
// exemption threshold.
func NewCalculator(lamportsPerByteYear uint64, exemptionThreshold float64) Calculator {
	return &calculator{
		lamportsPerByteYear: lamportsPerByteYear,
		exemptionThreshold:  exemptionThreshold,
	}
}

// NewDefaultCalculator returns a Calculator using the SDK default parameters.
func NewDefaultCalculator() Calculator {
	return NewCalculator(DefaultLamportsPerByteYear, DefaultExemptionThreshold)
}

// MinimumBalance implements Calculator.MinimumBalance.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/rent.rs#L74
func (c *calculator) MinimumBalance(dataSize uint64) uint64 {
	return uint64(float64((AccountStorageOverhead+dataSize)*c.lamportsPerByteYear) * c.exemptionThreshold)
}

type staticCalculator struct {
	fallback uint64
	bySize   map[uint64]uint64
}

// NewStaticCalculator returns a Calculator that resolves minimum balances from
// a fixed table, falling back to a flat value for unlisted sizes. Intended for
// tests that need to pin host-provided rent values.
func NewStaticCalculator(fallback uint64, bySize map[uint64]uint64) Calculator {
	return &staticCalculator{
		fallback: fallback,
		bySize:   bySize,
	}
}

func (c *staticCalculator) MinimumBalance(dataSize uint64) uint64 {
	if value, ok := c.bySize[dataSize]; ok {
		return value
	}
	return c.fallback
}
