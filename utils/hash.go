package utils

import "github.com/rryqszq4/go-murmurhash"

// MurmurHash64A is the 64-bit variant of MurmurHash2 used by the Stingray engine
// for resource names and types.
func MurmurHash64A(data []byte, seed uint64) uint64 {
	return murmurhash.MurmurHash64A(data, seed)
}

// ThinHash is the upper half of a 64-bit hash, used where only 32 bits are stored.
func ThinHash(hash uint64) uint32 {
	return uint32(hash >> 32)
}
