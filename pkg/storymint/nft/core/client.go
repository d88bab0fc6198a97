// Package core implements the nft collaborator on top of the ledger, so its
// state participates in the same atomic transaction as the escrow program's
// own mutations.
package core

import (
	"context"

	"github.com/pkg/errors"

	"github.com/storymint/storymint-server/pkg/cache"
	"github.com/storymint/storymint-server/pkg/solana/rent"
	"github.com/storymint/storymint-server/pkg/storymint/ledger"
	"github.com/storymint/storymint-server/pkg/storymint/nft"
)

const collectionCacheBudget = 128

type client struct {
	accounts ledger.Store
	rent     rent.Calculator

	// Collections are immutable once created, so committed reads can be
	// cached indefinitely.
	collectionCache cache.Cache
}

func NewClient(accounts ledger.Store, rentCalculator rent.Calculator) nft.Client {
	return &client{
		accounts:        accounts,
		rent:            rentCalculator,
		collectionCache: cache.NewCache(collectionCacheBudget),
	}
}

// CreateCollection creates a new collection, rent-funded by the payer.
func (c *client) CreateCollection(ctx context.Context, collection *nft.Collection, payer string) error {
	data := marshalCollection(collection)

	record := &ledger.Account{
		Address:  collection.Address,
		Owner:    ProgramAddress,
		Lamports: c.rent.MinimumBalance(uint64(len(data))),
		Data:     data,
	}

	err := c.accounts.Create(ctx, record, payer)
	if err == ledger.ErrAccountExists {
		return nft.ErrCollectionExists
	}
	return err
}

// GetCollection returns the collection at the given address.
func (c *client) GetCollection(ctx context.Context, address string) (*nft.Collection, error) {
	if cached, ok := c.collectionCache.Retrieve(address); ok {
		cloned := *cached.(*nft.Collection)
		return &cloned, nil
	}

	record, err := c.accounts.Get(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, nft.ErrCollectionNotFound
	} else if err != nil {
		return nil, err
	}

	collection, err := unmarshalCollection(address, record.Data)
	if err != nil {
		return nil, nft.ErrCollectionNotFound
	}

	cloned := *collection
	c.collectionCache.Insert(address, &cloned, 1)

	return collection, nil
}

// CreateAsset creates a new asset bound to its collection, rent-funded by the
// payer.
func (c *client) CreateAsset(ctx context.Context, asset *nft.Asset, authority, payer string) error {
	collection, err := c.GetCollection(ctx, asset.Collection)
	if err != nil {
		return err
	}

	if authority != collection.UpdateAuthority && authority != collection.MintDelegate {
		return nft.ErrInvalidAuthority
	}

	data := marshalAsset(asset)

	record := &ledger.Account{
		Address:  asset.Address,
		Owner:    ProgramAddress,
		Lamports: c.rent.MinimumBalance(uint64(len(data))),
		Data:     data,
	}

	err = c.accounts.Create(ctx, record, payer)
	if err == ledger.ErrAccountExists {
		return nft.ErrAssetExists
	}
	return err
}

// GetAsset returns the asset at the given address.
func (c *client) GetAsset(ctx context.Context, address string) (*nft.Asset, error) {
	record, err := c.accounts.Get(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, nft.ErrAssetNotFound
	} else if err != nil {
		return nil, err
	}

	asset, err := unmarshalAsset(address, record.Data)
	if err != nil {
		return nil, nft.ErrAssetNotFound
	}
	return asset, nil
}

// GetAssetSize returns the record size of an asset created with the given
// attributes.
func (c *client) GetAssetSize(asset *nft.Asset) uint64 {
	return uint64(len(marshalAsset(asset)))
}

// UpdateAsset rewrites an asset's descriptive metadata.
func (c *client) UpdateAsset(ctx context.Context, address, authority string, newName *string, newURI string) error {
	asset, err := c.GetAsset(ctx, address)
	if err != nil {
		return err
	}

	collection, err := c.GetCollection(ctx, asset.Collection)
	if err != nil {
		return err
	}

	if authority != collection.UpdateAuthority {
		return nft.ErrInvalidAuthority
	}

	if newName != nil {
		asset.Name = *newName
	}
	asset.URI = newURI

	err = c.accounts.SetData(ctx, address, marshalAsset(asset))
	return errors.Wrap(err, "error updating asset record")
}

// BurnAsset irreversibly destroys an asset and closes its account, refunding
// the rent to the owner.
func (c *client) BurnAsset(ctx context.Context, address, owner string) error {
	asset, err := c.GetAsset(ctx, address)
	if err != nil {
		return err
	}

	if asset.Owner != owner {
		return nft.ErrNotOwner
	}

	err = c.accounts.Close(ctx, address, owner)
	return errors.Wrap(err, "error closing asset account")
}
