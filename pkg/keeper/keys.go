package keeper

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrymomot/secureconfig/pkg/scrub"
)

// KeySize is the size of keeper key material in bytes.
const KeySize = 32

// GenerateKey returns 32 random bytes suitable for New.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyUnavailable, err)
	}
	return key, nil
}

// GenerateEncodedKey returns a new key as padded base64url text, the form
// accepted by FromString, FromEnv and FromFile.
func GenerateEncodedKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	defer scrub.Erase(key)
	return base64.URLEncoding.EncodeToString(key), nil
}

// CreateKeyFile writes a new encoded key to path with 0600 permissions.
// An existing file is never overwritten: the error then matches fs.ErrExist.
func CreateKeyFile(path string) (err error) {
	encoded, err := GenerateEncodedKey()
	if err != nil {
		return err
	}
	data := []byte(encoded + "\n")
	defer scrub.Erase(data)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	_, err = f.Write(data)
	return err
}

// DecodeKey parses a base64 key. URL-safe and standard alphabets are both
// accepted, padded or not. The caller should erase the result after use.
func DecodeKey(encoded string) ([]byte, error) {
	src := []byte(encoded)
	defer scrub.Erase(src)
	return decodeKey(src)
}

var keyEncodings = []*base64.Encoding{
	base64.URLEncoding,
	base64.RawURLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

func decodeKey(src []byte) ([]byte, error) {
	src = bytes.TrimSpace(src)
	if len(src) == 0 {
		return nil, ErrKeyUnavailable
	}

	for _, enc := range keyEncodings {
		dst := make([]byte, enc.DecodedLen(len(src)))
		n, err := enc.Decode(dst, src)
		if err != nil {
			scrub.Erase(dst)
			continue
		}
		if n != KeySize {
			scrub.Erase(dst)
			return nil, ErrInvalidKeyLength
		}
		return dst[:n], nil
	}

	return nil, errors.Join(ErrKeyUnavailable, errors.New("key is not valid base64"))
}

// FromString builds a Keeper from a base64-encoded key.
func FromString(encoded string, opts ...Option) (*Keeper, error) {
	key, err := DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	defer scrub.Erase(key)
	return New(key, opts...)
}

// FromEnv builds a Keeper from a base64 key stored in the named environment
// variable.
func FromEnv(name string, opts ...Option) (*Keeper, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil, fmt.Errorf("%w: environment variable %s is not set", ErrKeyUnavailable, name)
	}
	return FromString(v, opts...)
}

// FromFile builds a Keeper from a file holding a base64 key. Surrounding
// whitespace is ignored.
func FromFile(path string, opts ...Option) (*Keeper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrKeyUnavailable, err)
	}
	defer scrub.Erase(data)

	key, err := decodeKey(data)
	if err != nil {
		return nil, err
	}
	defer scrub.Erase(key)
	return New(key, opts...)
}
