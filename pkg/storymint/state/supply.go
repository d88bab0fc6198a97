package state

import (
	"math"

	"github.com/pkg/errors"
)

var (
	ErrMaxSupplyReached = errors.New("maximum supply reached")
	ErrSupplyOverflow   = errors.New("supply counter overflow")
	ErrSupplyUnderflow  = errors.New("supply counter underflow")
)

// IncrementMinted bumps the minted-supply counter, enforcing the hard cap.
// Arithmetic is checked; the counter never wraps.
func (obj *MasterState) IncrementMinted(maxSupply uint64) error {
	if obj.TotalMinted >= maxSupply {
		return ErrMaxSupplyReached
	}

	if obj.TotalMinted == math.MaxUint64 {
		return ErrSupplyOverflow
	}

	obj.TotalMinted += 1
	return nil
}

// DecrementMinted reduces the minted-supply counter. Underflow is a hard
// error, never wraparound.
func (obj *MasterState) DecrementMinted() error {
	if obj.TotalMinted == 0 {
		return ErrSupplyUnderflow
	}

	obj.TotalMinted -= 1
	return nil
}
