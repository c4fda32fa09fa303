package keeper

import "github.com/dmitrymomot/secureconfig/pkg/scrub"

// Open turns a raw stored value into the value handed to callers: ciphertext
// is decrypted, anything else is copied as is. The result always has to be
// burned by the caller.
func (k *Keeper) Open(raw string) (*scrub.String, error) {
	if !k.IsCiphertext(raw) {
		return scrub.FromString(raw), nil
	}
	return k.Decrypt(raw)
}

// Seal turns a caller value into the raw value to store. With encrypt set
// the value is encrypted; otherwise it is stored verbatim unless it would be
// mistaken for ciphertext on the next read (ErrSigilCollision).
func (k *Keeper) Seal(value string, encrypt bool) (string, error) {
	if encrypt {
		return k.Encrypt(value)
	}
	if k.IsCiphertext(value) {
		return "", ErrSigilCollision
	}
	return value, nil
}

// Reseal re-encrypts raw ciphertext under next. Plain values are returned
// unchanged.
func (k *Keeper) Reseal(raw string, next *Keeper) (string, error) {
	if !k.IsCiphertext(raw) {
		return raw, nil
	}

	plain, err := k.Decrypt(raw)
	if err != nil {
		return "", err
	}
	defer plain.Burn()

	return next.EncryptBytes(plain.Bytes())
}
