// Package keeper encrypts and decrypts individual config values and tags the
// resulting ciphertext with a sigil so it can be recognised on sight.
//
// A Keeper wraps one 32-byte key and one Cipher. Every value it encrypts is
// rendered as
//
//	sigil + keyID + "." + base64url(nonce || ciphertext || tag)
//
// The sigil (DefaultSigil unless overridden) lets a config file mix plain and
// encrypted values without a side schema: a value that starts with the sigil
// is ciphertext, anything else is plaintext. The key id is a public HKDF
// fingerprint of the key, which is how a wrong key (ErrInvalidKey) is told
// apart from damaged data (ErrMalformedCiphertext).
//
// # Ciphers
//
//   - aesgcm – AES-256-GCM with an HKDF-SHA-256 subkey (default).
//   - secretbox – NaCl secretbox (XSalsa20-Poly1305).
//
// Any other primitive can be plugged in through NewWithCipher.
//
// # Keys
//
// Keys are 32 random bytes, usually kept as base64 text. Both URL-safe and
// standard alphabets are accepted, padded or not:
//
//	k, err := keeper.FromString(os.Getenv("APP_CONFIG_KEY"))
//	k, err := keeper.FromEnv("APP_CONFIG_KEY")
//	k, err := keeper.FromFile("/run/secrets/config.key")
//
// Or from environment configuration parsed with caarlos0/env:
//
//	cfg, err := keeper.LoadConfig()
//	k, err := keeper.NewFromConfig(cfg)
//
// Generate a new key with GenerateEncodedKey.
//
// # Usage
//
//	ct, err := k.Encrypt("lame_password")
//	// ct == "~scfg1~3f9a0c12e4b7.q8Xz..."
//
//	pw, err := k.Decrypt(ct)
//	if err != nil {
//	    return err
//	}
//	defer pw.Burn()
//	connect(pw.Reveal())
//
// Config stores do not call Encrypt/Decrypt directly; they go through Open,
// Seal and Reseal which implement the per-value decision (decrypt, encrypt
// or pass through).
//
// # Whole documents and helpers
//
// EncryptFile and DecryptFile (or EncryptDocument and DecryptDocument over a
// source.Source) treat an entire file as one value. RestoreFile writes the
// plaintext back out. Check verifies a Config end to end, CreateKeyFile
// writes a fresh key without overwriting, and GeneratePassword produces
// random passwords as scrubbed strings.
//
// # Pass-through keeper
//
// A nil *Keeper is usable. It recognises DefaultSigil, reads plain values,
// and fails every encrypt/decrypt with ErrNoKeeper. Stores opened without a
// key rely on this.
//
// # Error Handling
//
// All errors wrap one of the package sentinels; use errors.Is. Nothing is
// retried: a wrong key or damaged ciphertext will not get better on a second
// attempt.
package keeper
