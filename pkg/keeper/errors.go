package keeper

import "errors"

var (
	// Keeper availability errors
	ErrNoKeeper            = errors.New("no keeper configured")
	ErrKeyUnavailable      = errors.New("encryption key unavailable")
	ErrInvalidKeyLength    = errors.New("invalid key length: must be 32 bytes")
	ErrUnknownCipher       = errors.New("unknown cipher")
	ErrInvalidSigil        = errors.New("invalid sigil: must be non-empty and contain no whitespace")
	ErrInvalidKeyID        = errors.New("invalid key id: must be non-empty and contain no '.'")
	ErrInvalidConfig       = errors.New("failed to parse keeper configuration")
	ErrKeyDerivationFailed = errors.New("key derivation failed")
	ErrInvalidAlphabet     = errors.New("password alphabet must hold between 1 and 256 bytes")

	// Value errors
	ErrNotCiphertext       = errors.New("value is not ciphertext")
	ErrInvalidKey          = errors.New("ciphertext was encrypted with a different key")
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	ErrSigilCollision      = errors.New("plaintext value starts with the ciphertext sigil")

	// Cipher errors
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")
)
