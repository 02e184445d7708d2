// Package encryption seals table checkpoints at rest. Hands and the skat
// are secret while a round runs, so whoever can read the state store must
// not see them.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrShortCiphertext = errors.New("ciphertext is shorter than its nonce")

// Sealer encrypts with AES-GCM. The key is the 16 bytes of a UUID.
type Sealer struct {
	aead cipher.AEAD
}

func NewSealer(key uuid.UUID) (*Sealer, error) {
	keyBytes, err := key.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to convert encryption key (uuid) to bytes")
	}
	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "creating cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "creating GCM")
	}
	return &Sealer{aead: aead}, nil
}

// NewSealerFromString parses key as a UUID.
func NewSealerFromString(key string) (*Sealer, error) {
	parsed, err := uuid.Parse(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid encryption key")
	}
	return NewSealer(parsed)
}

// Seal returns a random nonce followed by the ciphertext.
func (s *Sealer) Seal(data []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "reading nonce")
	}
	return s.aead.Seal(nonce, nonce, data, nil), nil
}

func (s *Sealer) Open(data []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(data) < n {
		return nil, ErrShortCiphertext
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, errors.Wrap(err, "decrypting")
	}
	return plain, nil
}
