package binary

import (
	"crypto/ed25519"
	"encoding/binary"
)

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutDiscriminator(dst []byte, v []byte, offset *int) {
	copy(dst, v)
	*offset += 8
}

func PutString(dst []byte, v string, offset *int) {
	binary.LittleEndian.PutUint32(dst, uint32(len(v)))
	copy(dst[4:], v)
	*offset += 4 + len(v)
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetDiscriminator(src []byte, dst *[]byte, offset *int) {
	*dst = make([]byte, 8)
	copy(*dst, src)
	*offset += 8
}

func GetString(src []byte, dst *string, offset *int) bool {
	if len(src) < 4 {
		return false
	}
	length := int(binary.LittleEndian.Uint32(src))
	if len(src) < 4+length {
		return false
	}
	*dst = string(src[4 : 4+length])
	*offset += 4 + length
	return true
}

// StringSize returns the serialized size of a length-prefixed string.
func StringSize(v string) int {
	return 4 + len(v)
}
