package state

import (
	"github.com/storymint/storymint-server/pkg/storymint/common"
)

// PDA seed tags. Addresses derived from these seeds are both the storage
// location and the de-facto mutual exclusion mechanism: two writers racing on
// the same derived address are serialized by the ledger's insert.
var (
	masterStateSeed   = []byte("master")
	tokenVaultSeed    = []byte("vault")
	mintAuthoritySeed = []byte("mint_authority")
)

// GetMasterStateAddress derives the master state address for a collection.
func GetMasterStateAddress(program, collection *common.Account) (*common.Account, error) {
	return common.NewDerivedAccount(program, masterStateSeed, collection.PublicKey().ToBytes())
}

// GetTokenVaultAddress derives the vault address backing an asset.
func GetTokenVaultAddress(program, asset *common.Account) (*common.Account, error) {
	return common.NewDerivedAccount(program, tokenVaultSeed, asset.PublicKey().ToBytes())
}

// GetMintAuthorityAddress derives the program's mint authority for a
// collection. The authority has no private key; holders prove it by
// re-deriving the address from public inputs.
func GetMintAuthorityAddress(program, collection *common.Account) (*common.Account, error) {
	return common.NewDerivedAccount(program, mintAuthoritySeed, collection.PublicKey().ToBytes())
}

// GetMintAuthoritySeeds returns the seeds behind GetMintAuthorityAddress, for
// callers that need to re-verify a provided authority against the derivation.
func GetMintAuthoritySeeds(collection *common.Account) [][]byte {
	return [][]byte{mintAuthoritySeed, collection.PublicKey().ToBytes()}
}
