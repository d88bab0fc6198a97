package core

import (
	"bytes"
	"crypto/sha256"

	"github.com/pkg/errors"

	"github.com/storymint/storymint-server/pkg/solana/binary"
	"github.com/storymint/storymint-server/pkg/storymint/nft"
)

// ProgramAddress is the address the collaborator's accounts are owned by.
const ProgramAddress = "CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d"

var (
	errInvalidRecord = errors.New("invalid record data")

	collectionDiscriminator = discriminator("CollectionV1")
	assetDiscriminator      = discriminator("AssetV1")
)

func discriminator(name string) []byte {
	hash := sha256.Sum256([]byte("account:" + name))
	return hash[:8]
}

func marshalCollection(obj *nft.Collection) []byte {
	size := 8 +
		binary.StringSize(obj.UpdateAuthority) +
		binary.StringSize(obj.MintDelegate) +
		binary.StringSize(obj.Name) +
		binary.StringSize(obj.URI)
	res := make([]byte, size)

	var offset int
	binary.PutDiscriminator(res[offset:], collectionDiscriminator, &offset)
	binary.PutString(res[offset:], obj.UpdateAuthority, &offset)
	binary.PutString(res[offset:], obj.MintDelegate, &offset)
	binary.PutString(res[offset:], obj.Name, &offset)
	binary.PutString(res[offset:], obj.URI, &offset)

	return res
}

func unmarshalCollection(address string, data []byte) (*nft.Collection, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], collectionDiscriminator) {
		return nil, errInvalidRecord
	}

	obj := &nft.Collection{
		Address: address,
	}

	offset := 8
	for _, dst := range []*string{&obj.UpdateAuthority, &obj.MintDelegate, &obj.Name, &obj.URI} {
		if !binary.GetString(data[offset:], dst, &offset) {
			return nil, errInvalidRecord
		}
	}

	return obj, nil
}

func marshalAsset(obj *nft.Asset) []byte {
	size := 8 +
		binary.StringSize(obj.Collection) +
		binary.StringSize(obj.Owner) +
		binary.StringSize(obj.Name) +
		binary.StringSize(obj.URI)
	res := make([]byte, size)

	var offset int
	binary.PutDiscriminator(res[offset:], assetDiscriminator, &offset)
	binary.PutString(res[offset:], obj.Collection, &offset)
	binary.PutString(res[offset:], obj.Owner, &offset)
	binary.PutString(res[offset:], obj.Name, &offset)
	binary.PutString(res[offset:], obj.URI, &offset)

	return res
}

func unmarshalAsset(address string, data []byte) (*nft.Asset, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], assetDiscriminator) {
		return nil, errInvalidRecord
	}

	obj := &nft.Asset{
		Address: address,
	}

	offset := 8
	for _, dst := range []*string{&obj.Collection, &obj.Owner, &obj.Name, &obj.URI} {
		if !binary.GetString(data[offset:], dst, &offset) {
			return nil, errInvalidRecord
		}
	}

	return obj, nil
}
