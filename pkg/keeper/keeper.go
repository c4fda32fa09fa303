package keeper

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode"

	"github.com/dmitrymomot/secureconfig/pkg/scrub"
)

// DefaultSigil marks keeper ciphertext. It is also what a nil *Keeper uses
// to recognise ciphertext it cannot decrypt.
const DefaultSigil = "~scfg1~"

// keyIDSeparator ends the key id that follows the sigil.
const keyIDSeparator = "."

// Keeper encrypts and decrypts config values with one key.
//
// Ciphertext produced by a Keeper has the form
//
//	sigil + keyID + "." + base64url(sealed)
//
// so a value declares its own encoding and plain and encrypted values can be
// mixed in one file. A Keeper is immutable after construction and safe for
// concurrent use.
//
// A nil *Keeper is valid and acts as a pass-through keeper: it recognises
// DefaultSigil but every encrypt/decrypt fails with ErrNoKeeper.
type Keeper struct {
	cipher Cipher
	sigil  string
	keyID  string
}

// Option configures a Keeper.
type Option func(*options)

type options struct {
	sigil  string
	cipher string
}

// WithSigil overrides DefaultSigil. Empty values are ignored.
func WithSigil(sigil string) Option {
	return func(o *options) {
		if sigil != "" {
			o.sigil = sigil
		}
	}
}

// WithCipher selects a built-in cipher by name (CipherAESGCM by default).
// Empty values are ignored. The option has no effect on NewWithCipher.
func WithCipher(name string) Option {
	return func(o *options) {
		if name != "" {
			o.cipher = name
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{sigil: DefaultSigil, cipher: CipherAESGCM}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New creates a Keeper from 32 bytes of key material. The key is not
// retained, so the caller may erase it once New returns.
func New(key []byte, opts ...Option) (*Keeper, error) {
	if len(key) != KeySize {
		return nil, errors.Join(ErrKeyUnavailable, ErrInvalidKeyLength)
	}

	o := buildOptions(opts)
	factory, err := cipherFactory(o.cipher)
	if err != nil {
		return nil, err
	}

	c, err := factory(key)
	if err != nil {
		return nil, err
	}
	return newKeeper(c, o)
}

// NewWithCipher wraps an externally managed Cipher.
func NewWithCipher(c Cipher, opts ...Option) (*Keeper, error) {
	if c == nil {
		return nil, ErrKeyUnavailable
	}
	return newKeeper(c, buildOptions(opts))
}

func newKeeper(c Cipher, o *options) (*Keeper, error) {
	if o.sigil == "" || strings.ContainsFunc(o.sigil, unicode.IsSpace) {
		return nil, ErrInvalidSigil
	}

	id := c.KeyID()
	if id == "" || strings.Contains(id, keyIDSeparator) {
		return nil, ErrInvalidKeyID
	}

	return &Keeper{cipher: c, sigil: o.sigil, keyID: id}, nil
}

// Sigil returns the ciphertext marker.
func (k *Keeper) Sigil() string {
	if k == nil {
		return DefaultSigil
	}
	return k.sigil
}

// KeyID returns the public fingerprint embedded in ciphertext.
// It is empty for a nil Keeper.
func (k *Keeper) KeyID() string {
	if k == nil {
		return ""
	}
	return k.keyID
}

// CipherName returns the name of the underlying cipher.
func (k *Keeper) CipherName() string {
	if k == nil {
		return ""
	}
	return k.cipher.Name()
}

// IsCiphertext reports whether v starts with the keeper's sigil.
// Plaintext that happens to start with the sigil is misidentified, which is
// why Seal refuses to store such values unencrypted.
func (k *Keeper) IsCiphertext(v string) bool {
	return strings.HasPrefix(v, k.Sigil())
}

// Encrypt encrypts plaintext and returns sigil-tagged ciphertext.
func (k *Keeper) Encrypt(plaintext string) (string, error) {
	if k == nil {
		return "", ErrNoKeeper
	}
	buf := []byte(plaintext)
	defer scrub.Erase(buf)
	return k.EncryptBytes(buf)
}

// EncryptBytes is Encrypt for a plaintext already held in a byte slice.
// The slice is not modified.
func (k *Keeper) EncryptBytes(plaintext []byte) (string, error) {
	if k == nil {
		return "", ErrNoKeeper
	}

	sealed, err := k.cipher.Seal(plaintext)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	var b strings.Builder
	b.Grow(len(k.sigil) + len(k.keyID) + len(keyIDSeparator) + base64.RawURLEncoding.EncodedLen(len(sealed)))
	b.WriteString(k.sigil)
	b.WriteString(k.keyID)
	b.WriteString(keyIDSeparator)
	b.WriteString(base64.RawURLEncoding.EncodeToString(sealed))
	return b.String(), nil
}

// Decrypt decrypts keeper ciphertext into a scrubbed string.
//
// Errors:
//   - ErrNoKeeper for a nil Keeper.
//   - ErrNotCiphertext when the value does not carry the sigil.
//   - ErrInvalidKey when the value was encrypted under another key.
//   - ErrMalformedCiphertext when the value is damaged.
func (k *Keeper) Decrypt(ciphertext string) (*scrub.String, error) {
	if k == nil {
		return nil, ErrNoKeeper
	}
	if !k.IsCiphertext(ciphertext) {
		return nil, ErrNotCiphertext
	}

	keyID, payload, ok := strings.Cut(ciphertext[len(k.sigil):], keyIDSeparator)
	if !ok || keyID == "" || payload == "" {
		return nil, ErrMalformedCiphertext
	}
	if keyID != k.keyID {
		return nil, ErrInvalidKey
	}

	sealed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Join(ErrMalformedCiphertext, err)
	}

	plaintext, err := k.cipher.Open(sealed)
	if err != nil {
		// The key id matched, so a failed open means the payload was altered.
		return nil, errors.Join(ErrMalformedCiphertext, err)
	}
	return scrub.New(plaintext), nil
}
