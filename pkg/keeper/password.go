package keeper

import (
	"crypto/rand"
	"errors"

	"github.com/dmitrymomot/secureconfig/pkg/scrub"
)

// PasswordSymbols are the punctuation characters GeneratePassword mixes in.
const PasswordSymbols = "_-)(&^#@!."

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	PasswordSymbols

// DefaultPasswordLength is used by GeneratePassword for a non-positive length.
const DefaultPasswordLength = 32

// GeneratePassword returns a random password of ASCII letters, digits and
// PasswordSymbols.
func GeneratePassword(length int) (*scrub.String, error) {
	return GeneratePasswordFrom(passwordAlphabet, length)
}

// GeneratePasswordFrom returns a random password drawn uniformly from the
// bytes of alphabet.
func GeneratePasswordFrom(alphabet string, length int) (*scrub.String, error) {
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return nil, ErrInvalidAlphabet
	}
	if length <= 0 {
		length = DefaultPasswordLength
	}

	// Bytes at or above limit would skew the distribution.
	limit := 256 - 256%len(alphabet)

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	defer scrub.Erase(buf)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			scrub.Erase(out)
			return nil, errors.Join(ErrKeyUnavailable, err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return scrub.New(out), nil
}
