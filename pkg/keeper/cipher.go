package keeper

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/dmitrymomot/secureconfig/pkg/scrub"
)

// Built-in cipher names.
const (
	CipherAESGCM    = "aesgcm"
	CipherSecretBox = "secretbox"
)

// Cipher is the symmetric primitive a Keeper delegates to.
// Implementations must be safe for concurrent use once constructed.
type Cipher interface {
	// Name identifies the algorithm, e.g. "aesgcm".
	Name() string
	// KeyID is a short public fingerprint of the key. It is embedded in every
	// ciphertext so that a wrong key can be told apart from corrupted data.
	KeyID() string
	// Seal encrypts plaintext. The result carries everything Open needs
	// besides the key (nonce included).
	Seal(plaintext []byte) ([]byte, error)
	// Open reverses Seal.
	Open(sealed []byte) ([]byte, error)
}

// CipherFactory builds a Cipher from 32 bytes of key material. The factory
// must not retain key.
type CipherFactory func(key []byte) (Cipher, error)

var ciphers = map[string]CipherFactory{
	CipherAESGCM:    NewAESGCM,
	CipherSecretBox: NewSecretBox,
}

func cipherFactory(name string) (CipherFactory, error) {
	f, ok := ciphers[name]
	if !ok {
		return nil, errors.Join(ErrUnknownCipher, errors.New(name))
	}
	return f, nil
}

const keyIDSize = 6

// deriveSubkey expands key into a fresh 32-byte subkey bound to info.
// The caller erases the result once the cipher has been initialised.
func deriveSubkey(key []byte, info string) ([]byte, error) {
	sub := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(info)), sub); err != nil {
		scrub.Erase(sub)
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return sub, nil
}

// deriveKeyID returns a hex fingerprint of key that is independent of the
// encryption subkey.
func deriveKeyID(key []byte, cipherName string) (string, error) {
	id := make([]byte, keyIDSize)
	r := hkdf.New(sha256.New, key, nil, []byte("secureconfig/key-id/"+cipherName))
	if _, err := io.ReadFull(r, id); err != nil {
		return "", errors.Join(ErrKeyDerivationFailed, err)
	}
	return hex.EncodeToString(id), nil
}
