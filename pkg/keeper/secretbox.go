package keeper

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/dmitrymomot/secureconfig/pkg/scrub"
)

const secretboxNonceSize = 24

type secretBox struct {
	key   [KeySize]byte
	keyID string
}

// NewSecretBox returns a NaCl secretbox (XSalsa20-Poly1305) cipher.
// Output format: 24-byte nonce || box.
func NewSecretBox(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	sub, err := deriveSubkey(key, "secureconfig/secretbox/v1")
	if err != nil {
		return nil, err
	}
	defer scrub.Erase(sub)

	id, err := deriveKeyID(key, CipherSecretBox)
	if err != nil {
		return nil, err
	}

	c := &secretBox{keyID: id}
	copy(c.key[:], sub)
	return c, nil
}

func (c *secretBox) Name() string  { return CipherSecretBox }
func (c *secretBox) KeyID() string { return c.keyID }

func (c *secretBox) Seal(plaintext []byte) ([]byte, error) {
	var nonce [secretboxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &c.key), nil
}

func (c *secretBox) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < secretboxNonceSize+secretbox.Overhead {
		return nil, ErrMalformedCiphertext
	}

	var nonce [secretboxNonceSize]byte
	copy(nonce[:], sealed[:secretboxNonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[secretboxNonceSize:], &nonce, &c.key)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
