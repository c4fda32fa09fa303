// Package iniconfig is an INI config store whose values can be individually
// encrypted.
//
// Encrypted and plain values live side by side in one file. Every value
// declares its own encoding: a value starting with the keeper's sigil is
// ciphertext, anything else is plaintext. Decryption happens on demand in
// Get; the rest of the store only ever handles raw values, so reading and
// writing a document without touching it preserves every value byte for
// byte.
//
// # Usage
//
//	k, err := keeper.FromEnv("SECURECONFIG_KEY")
//	if err != nil {
//	    // handle error
//	}
//
//	store := iniconfig.New(iniconfig.WithKeeper(k))
//	if err := store.ReadFile("config.ini"); err != nil {
//	    // handle error
//	}
//
//	// Encrypt a value and persist it.
//	if err := store.Set("database", "password", "lame_password", true); err != nil {
//	    // handle error
//	}
//	if err := store.WriteFile("config.ini"); err != nil {
//	    // handle error
//	}
//
//	// Read it back. The secret is erased when the callback returns.
//	err = store.Use("database", "password", func(p *scrub.String) error {
//	    return connect(user, p.Reveal())
//	})
//
// # Pass-through mode
//
// A store created without WithKeeper still reads, writes and exposes raw
// values through RawGet. Get on an encrypted value and Set with encryption
// fail with keeper.ErrNoKeeper.
//
// # Errors
//
// Lookups fail with ErrSectionNotFound or ErrKeyNotFound. Decryption errors
// from the keeper package (keeper.ErrInvalidKey, keeper.ErrMalformedCiphertext)
// are returned unchanged, as are I/O errors from readers, writers and
// sources.
//
// Set and RawSet refuse, with ErrUnrepresentable, any entry the INI format
// would not read back unchanged. Encrypting such a value always works.
package iniconfig
