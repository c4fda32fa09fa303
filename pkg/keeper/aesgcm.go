package keeper

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"

	"github.com/dmitrymomot/secureconfig/pkg/scrub"
)

type aesGCM struct {
	aead  cipher.AEAD
	keyID string
}

// NewAESGCM returns an AES-256-GCM cipher keyed with an HKDF-SHA-256 subkey
// of key. Output format: nonce || ciphertext || tag.
func NewAESGCM(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	sub, err := deriveSubkey(key, "secureconfig/aesgcm/v1")
	if err != nil {
		return nil, err
	}
	defer scrub.Erase(sub)

	block, err := aes.NewCipher(sub)
	if err != nil {
		return nil, errors.Join(ErrKeyUnavailable, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrKeyUnavailable, err)
	}

	id, err := deriveKeyID(key, CipherAESGCM)
	if err != nil {
		return nil, err
	}

	return &aesGCM{aead: aead, keyID: id}, nil
}

func (c *aesGCM) Name() string  { return CipherAESGCM }
func (c *aesGCM) KeyID() string { return c.keyID }

func (c *aesGCM) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *aesGCM) Open(sealed []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize+c.aead.Overhead() {
		return nil, ErrMalformedCiphertext
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
