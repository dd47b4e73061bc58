package stingray

import (
	"fmt"
	"math/bits"
	"strconv"

	"github.com/mogaika/stingray_extractor/utils"
)

// Hash is a 64-bit resource hash in numeric form. Archives store it as the
// little-endian bytes of the hash, so the big-endian rendering of those
// bytes is Swapped.
type Hash uint64

// ThinHash is the upper half of a Hash.
type ThinHash uint32

func HashString(s string) Hash {
	return Hash(utils.MurmurHash64A([]byte(s), 0))
}

func HashBytes(b []byte) Hash {
	return Hash(utils.MurmurHash64A(b, 0))
}

func (h Hash) Thin() ThinHash {
	return ThinHash(utils.ThinHash(uint64(h)))
}

// Swapped returns the hash with its byte order reversed, which is how
// little-endian tooling prints the same value.
func (h Hash) Swapped() Hash {
	return Hash(bits.ReverseBytes64(uint64(h)))
}

func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	v, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func (h ThinHash) String() string {
	return fmt.Sprintf("%08x", uint32(h))
}

// ParseHash accepts 16 hex digits with an optional 0x prefix.
func ParseHash(s string) (Hash, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hash %q: %v", s, err)
	}
	return Hash(v), nil
}
