package keeper

import (
	"bytes"
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/secureconfig/pkg/scrub"
)

// Config describes where the keeper key comes from. Key wins over KeyFile
// when both are set.
type Config struct {
	Key     string `env:"SECURECONFIG_KEY"`                        // Base64 key material
	KeyFile string `env:"SECURECONFIG_KEY_FILE"`                   // Path to a file holding the base64 key
	Sigil   string `env:"SECURECONFIG_SIGIL" envDefault:"~scfg1~"` // Ciphertext marker
	Cipher  string `env:"SECURECONFIG_CIPHER" envDefault:"aesgcm"` // aesgcm or secretbox
}

// LoadConfig reads Config from the environment. Without arguments the
// default .env file is loaded if present; explicit env files must exist.
// Variables already set in the process environment take precedence.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, errors.Join(ErrInvalidConfig, err)
		}
	} else {
		// The default .env file is optional.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// NewFromConfig creates a Keeper from cfg.
func NewFromConfig(cfg Config) (*Keeper, error) {
	opts := []Option{WithSigil(cfg.Sigil), WithCipher(cfg.Cipher)}

	switch {
	case cfg.Key != "":
		return FromString(cfg.Key, opts...)
	case cfg.KeyFile != "":
		return FromFile(cfg.KeyFile, opts...)
	default:
		return nil, errors.Join(ErrKeyUnavailable, errors.New("neither SECURECONFIG_KEY nor SECURECONFIG_KEY_FILE is set"))
	}
}

// Check reports whether cfg yields a working keeper: the key must load and a
// random sample must survive an encrypt and decrypt round trip.
func Check(cfg Config) error {
	k, err := NewFromConfig(cfg)
	if err != nil {
		return err
	}

	sample, err := GenerateKey()
	if err != nil {
		return err
	}
	defer scrub.Erase(sample)

	token, err := k.EncryptBytes(sample)
	if err != nil {
		return err
	}
	back, err := k.Decrypt(token)
	if err != nil {
		return err
	}
	defer back.Burn()

	if !bytes.Equal(sample, back.Bytes()) {
		return ErrDecryptionFailed
	}
	return nil
}
