// Package nft defines the external token/metadata collaborator consumed by
// the escrow program. The program treats these calls as black boxes that
// succeed or fail atomically; failures propagate verbatim.
package nft

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionExists   = errors.New("collection already exists")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrAssetExists        = errors.New("asset already exists")

	ErrInvalidAuthority = errors.New("invalid authority")
	ErrNotOwner         = errors.New("signer is not the asset owner")
)

// Collection groups assets under a shared metadata lineage. The mint delegate
// mirrors an update-delegate plugin: an additional authority allowed to create
// assets into the collection.
type Collection struct {
	Address         string
	UpdateAuthority string
	MintDelegate    string

	Name string
	URI  string
}

// Asset is a single non-fungible token bound to a collection.
type Asset struct {
	Address    string
	Collection string
	Owner      string

	Name string
	URI  string
}

type Client interface {
	// CreateCollection creates a new collection, rent-funded by the payer.
	CreateCollection(ctx context.Context, collection *Collection, payer string) error

	// GetCollection returns the collection at the given address.
	//
	// Returns ErrCollectionNotFound if no collection exists.
	GetCollection(ctx context.Context, address string) (*Collection, error)

	// CreateAsset creates a new asset bound to its collection, rent-funded by
	// the payer. The authority must be the collection's update authority or
	// its mint delegate.
	CreateAsset(ctx context.Context, asset *Asset, authority, payer string) error

	// GetAsset returns the asset at the given address.
	//
	// Returns ErrAssetNotFound if no asset exists.
	GetAsset(ctx context.Context, address string) (*Asset, error)

	// GetAssetSize returns the record size of an asset created with the given
	// attributes, for rent estimation ahead of creation.
	GetAssetSize(asset *Asset) uint64

	// UpdateAsset rewrites an asset's descriptive metadata. The authority
	// must be the update authority of the asset's collection.
	UpdateAsset(ctx context.Context, address, authority string, newName *string, newURI string) error

	// BurnAsset irreversibly destroys an asset owned by owner and closes its
	// account, refunding the rent to the owner. After a successful burn no
	// account may remain at the asset's address.
	BurnAsset(ctx context.Context, address, owner string) error
}
