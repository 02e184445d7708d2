package random

import (
	crypto_rand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// NewSource returns a math/rand source seeded from crypto/rand, used for
// shuffling decks.
func NewSource() rand.Source {
	var b [8]byte
	if _, err := crypto_rand.Read(b[:]); err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}
	return rand.NewSource(int64(binary.LittleEndian.Uint64(b[:]) >> 1))
}
