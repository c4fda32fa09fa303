// Package secureconfig stores configuration files in which individual
// values, not whole files, are encrypted at rest.
//
// A value that starts with the keeper's sigil is ciphertext; every other
// value is plaintext. One file can therefore mix readable settings with
// encrypted secrets, and it can still be opened, inspected and rewritten
// without the key.
//
// The module is organized as a set of packages:
//
//   - pkg/keeper: the key holder. Encrypts values into sigil-tagged tokens
//     and decrypts them, telling "wrong key" apart from "damaged value".
//   - pkg/scrub: the self-erasing string that carries decrypted secrets.
//   - pkg/iniconfig, pkg/jsonconfig, pkg/yamlconfig: config stores that
//     decrypt on Get and encrypt on Set for INI, JSON and YAML documents.
//   - pkg/source: where documents live (local file, S3, Redis).
//   - pkg/logger: slog setup and attribute helpers.
//
// # Quick start
//
//	k, err := keeper.FromEnv("SECURECONFIG_KEY")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := iniconfig.New(iniconfig.WithKeeper(k))
//	if err := cfg.ReadFile("app.ini"); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = cfg.Use("database", "password", func(p *scrub.String) error {
//	    return db.Connect(user, p.Reveal())
//	})
//
// Decrypted values are *scrub.String. They print as "[REDACTED]" through
// fmt, slog and encoding/json, and their memory is zeroed when Use returns
// or Burn is called.
package secureconfig
