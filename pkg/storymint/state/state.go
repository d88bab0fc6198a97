// Package state defines the fixed-width on-ledger records owned by the escrow
// program, along with their deterministic address derivations.
package state

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/pkg/errors"

	"github.com/storymint/storymint-server/pkg/solana/binary"
)

const (
	DiscriminatorSize = 8

	// MasterStateSize is discriminator + collection + total_minted
	MasterStateSize = DiscriminatorSize + 32 + 8

	// TokenVaultSize is discriminator + asset
	TokenVaultSize = DiscriminatorSize + 32
)

var (
	ErrInvalidAccountSize   = errors.New("invalid account size")
	ErrInvalidDiscriminator = errors.New("invalid account discriminator")
)

var (
	masterStateDiscriminator = discriminator("MasterState")
	tokenVaultDiscriminator  = discriminator("TokenVault")
)

// discriminator returns the 8-byte namespace tag written at the front of every
// record, so account data can never be reinterpreted as another record type.
func discriminator(name string) []byte {
	hash := sha256.Sum256([]byte("account:" + name))
	return hash[:DiscriminatorSize]
}

// MasterState is the per-collection record. It owns the minted-supply counter.
type MasterState struct {
	Collection  ed25519.PublicKey
	TotalMinted uint64
}

func (obj MasterState) Marshal() []byte {
	res := make([]byte, MasterStateSize)

	var offset int
	binary.PutDiscriminator(res[offset:], masterStateDiscriminator, &offset)
	binary.PutKey32(res[offset:], obj.Collection, &offset)
	binary.PutUint64(res[offset:], obj.TotalMinted, &offset)

	return res
}

func (obj *MasterState) Unmarshal(data []byte) error {
	if len(data) != MasterStateSize {
		return ErrInvalidAccountSize
	}

	var offset int
	var disc []byte

	binary.GetDiscriminator(data[offset:], &disc, &offset)
	if !bytes.Equal(disc, masterStateDiscriminator) {
		return ErrInvalidDiscriminator
	}

	binary.GetKey32(data[offset:], &obj.Collection, &offset)
	binary.GetUint64(data[offset:], &obj.TotalMinted, &offset)

	return nil
}

// TokenVault is the per-asset record. The vault account's lamport balance is
// the single source of truth for the escrowed amount; the record only pins
// the asset the vault backs.
type TokenVault struct {
	Asset ed25519.PublicKey
}

func (obj TokenVault) Marshal() []byte {
	res := make([]byte, TokenVaultSize)

	var offset int
	binary.PutDiscriminator(res[offset:], tokenVaultDiscriminator, &offset)
	binary.PutKey32(res[offset:], obj.Asset, &offset)

	return res
}

func (obj *TokenVault) Unmarshal(data []byte) error {
	if len(data) != TokenVaultSize {
		return ErrInvalidAccountSize
	}

	var offset int
	var disc []byte

	binary.GetDiscriminator(data[offset:], &disc, &offset)
	if !bytes.Equal(disc, tokenVaultDiscriminator) {
		return ErrInvalidDiscriminator
	}

	binary.GetKey32(data[offset:], &obj.Asset, &offset)

	return nil
}
