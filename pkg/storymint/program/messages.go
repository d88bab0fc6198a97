package program

import (
	"github.com/storymint/storymint-server/pkg/solana/binary"
	"github.com/storymint/storymint-server/pkg/storymint/common"
)

// Canonical request messages signed by clients. Every field is length
// prefixed, so two distinct requests never serialize to the same bytes and a
// signature over one request can never authorize another.

func GetInitializeCollectionMessage(collection *common.Account, name, uri string) []byte {
	return buildMessage("initialize_collection", collection.PublicKey().ToBase58(), name, uri)
}

func GetUpdateMetadataMessage(asset *common.Account, newName *string, newURI string) []byte {
	// A presence marker keeps an absent name distinct from an empty one
	nameField := "\x00"
	if newName != nil {
		nameField = "\x01" + *newName
	}
	return buildMessage("update_metadata", asset.PublicKey().ToBase58(), nameField, newURI)
}

func GetBurnAndWithdrawMessage(asset *common.Account) []byte {
	return buildMessage("burn_and_withdraw", asset.PublicKey().ToBase58())
}

func buildMessage(operation string, fields ...string) []byte {
	size := binary.StringSize(operation)
	for _, field := range fields {
		size += binary.StringSize(field)
	}

	res := make([]byte, size)

	var offset int
	binary.PutString(res[offset:], operation, &offset)
	for _, field := range fields {
		binary.PutString(res[offset:], field, &offset)
	}

	return res
}
