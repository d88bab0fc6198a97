package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storymint/storymint-server/pkg/pointer"
	"github.com/storymint/storymint-server/pkg/solana/rent"
	"github.com/storymint/storymint-server/pkg/storymint/common"
	"github.com/storymint/storymint-server/pkg/storymint/ledger"
	"github.com/storymint/storymint-server/pkg/storymint/ledger/memory"
	"github.com/storymint/storymint-server/pkg/storymint/nft"
)

type testEnv struct {
	ctx      context.Context
	accounts ledger.Store
	client   nft.Client

	authority string
	delegate  string
	payer     string
}

func setup(t *testing.T) *testEnv {
	accounts := memory.New()

	env := &testEnv{
		ctx:      context.Background(),
		accounts: accounts,
		client:   NewClient(accounts, rent.NewDefaultCalculator()),

		authority: newAddress(t),
		delegate:  newAddress(t),
		payer:     newAddress(t),
	}

	require.NoError(t, accounts.Airdrop(env.ctx, env.payer, 100_000_000))

	return env
}

func newAddress(t *testing.T) string {
	account, err := common.NewRandomAccount()
	require.NoError(t, err)
	return account.PublicKey().ToBase58()
}

func (env *testEnv) createCollection(t *testing.T) *nft.Collection {
	collection := &nft.Collection{
		Address:         newAddress(t),
		UpdateAuthority: env.authority,
		MintDelegate:    env.delegate,
		Name:            "Locked SOL NFT",
		URI:             "https://api.locked-sol.com/metadata/initial.json",
	}
	require.NoError(t, env.client.CreateCollection(env.ctx, collection, env.payer))
	return collection
}

func (env *testEnv) createAsset(t *testing.T, collection *nft.Collection, owner string) *nft.Asset {
	asset := &nft.Asset{
		Address:    newAddress(t),
		Collection: collection.Address,
		Owner:      owner,
		Name:       collection.Name,
		URI:        collection.URI,
	}
	require.NoError(t, env.client.CreateAsset(env.ctx, asset, env.delegate, env.payer))
	return asset
}

func TestCollection_RoundTrip(t *testing.T) {
	env := setup(t)

	_, err := env.client.GetCollection(env.ctx, newAddress(t))
	assert.Equal(t, nft.ErrCollectionNotFound, err)

	expected := env.createCollection(t)

	actual, err := env.client.GetCollection(env.ctx, expected.Address)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	// Recreating at the same address fails
	assert.Equal(t, nft.ErrCollectionExists, env.client.CreateCollection(env.ctx, expected, env.payer))

	// The payer funded exactly the record's rent-exempt minimum
	record, err := env.accounts.Get(env.ctx, expected.Address)
	require.NoError(t, err)
	assert.Equal(t, ProgramAddress, record.Owner)
	assert.EqualValues(t, rent.NewDefaultCalculator().MinimumBalance(uint64(len(record.Data))), record.Lamports)
}

func TestAsset_CreateRequiresAuthority(t *testing.T) {
	env := setup(t)
	collection := env.createCollection(t)

	asset := &nft.Asset{
		Address:    newAddress(t),
		Collection: collection.Address,
		Owner:      env.payer,
		Name:       collection.Name,
		URI:        collection.URI,
	}

	// Neither the update authority nor the mint delegate
	err := env.client.CreateAsset(env.ctx, asset, newAddress(t), env.payer)
	assert.Equal(t, nft.ErrInvalidAuthority, err)

	_, err = env.client.GetAsset(env.ctx, asset.Address)
	assert.Equal(t, nft.ErrAssetNotFound, err)

	// The mint delegate can create
	require.NoError(t, env.client.CreateAsset(env.ctx, asset, env.delegate, env.payer))

	actual, err := env.client.GetAsset(env.ctx, asset.Address)
	require.NoError(t, err)
	assert.Equal(t, asset, actual)

	// Duplicate address fails
	assert.Equal(t, nft.ErrAssetExists, env.client.CreateAsset(env.ctx, asset, env.delegate, env.payer))

	// The advertised size matches the stored record, so rent estimated ahead
	// of creation is exactly the rent funded at creation
	record, err := env.accounts.Get(env.ctx, asset.Address)
	require.NoError(t, err)
	assert.EqualValues(t, env.client.GetAssetSize(asset), len(record.Data))
	assert.EqualValues(t, rent.NewDefaultCalculator().MinimumBalance(env.client.GetAssetSize(asset)), record.Lamports)

	// Unknown collection fails
	orphan := &nft.Asset{
		Address:    newAddress(t),
		Collection: newAddress(t),
		Owner:      env.payer,
	}
	assert.Equal(t, nft.ErrCollectionNotFound, env.client.CreateAsset(env.ctx, orphan, env.delegate, env.payer))
}

func TestAsset_Update(t *testing.T) {
	env := setup(t)
	collection := env.createCollection(t)
	asset := env.createAsset(t, collection, env.payer)

	newName := pointer.String("Updated Name")
	err := env.client.UpdateAsset(env.ctx, asset.Address, newAddress(t), newName, "https://api.locked-sol.com/metadata/updated.json")
	assert.Equal(t, nft.ErrInvalidAuthority, err)

	require.NoError(t, env.client.UpdateAsset(env.ctx, asset.Address, env.authority, newName, "https://api.locked-sol.com/metadata/updated.json"))

	actual, err := env.client.GetAsset(env.ctx, asset.Address)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", actual.Name)
	assert.Equal(t, "https://api.locked-sol.com/metadata/updated.json", actual.URI)

	// Name is optional
	require.NoError(t, env.client.UpdateAsset(env.ctx, asset.Address, env.authority, nil, asset.URI))

	actual, err = env.client.GetAsset(env.ctx, asset.Address)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", actual.Name)
	assert.Equal(t, asset.URI, actual.URI)
}

func TestAsset_Burn(t *testing.T) {
	env := setup(t)
	collection := env.createCollection(t)

	owner := newAddress(t)
	require.NoError(t, env.accounts.Airdrop(env.ctx, owner, 0))
	asset := env.createAsset(t, collection, owner)

	assetRecord, err := env.accounts.Get(env.ctx, asset.Address)
	require.NoError(t, err)
	assetRent := assetRecord.Lamports

	// Only the owner can burn
	assert.Equal(t, nft.ErrNotOwner, env.client.BurnAsset(env.ctx, asset.Address, env.payer))

	require.NoError(t, env.client.BurnAsset(env.ctx, asset.Address, owner))

	// The asset account is closed and its rent refunded to the owner
	_, err = env.client.GetAsset(env.ctx, asset.Address)
	assert.Equal(t, nft.ErrAssetNotFound, err)
	_, err = env.accounts.Get(env.ctx, asset.Address)
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	ownerRecord, err := env.accounts.Get(env.ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, assetRent, ownerRecord.Lamports)
}
