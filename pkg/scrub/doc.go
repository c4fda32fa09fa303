// Package scrub holds decrypted secrets in mutable byte buffers that are
// overwritten with zeros once the secret is no longer needed.
//
// Go strings are immutable and may be shared freely by the runtime, so a
// secret that has been converted into a plain string can never be erased.
// The package therefore keeps every secret in a []byte owned by a *String
// and only hands out read-only views of that buffer at the point of use.
//
// # Architecture
//
//  1. Erase – zeroes a byte slice in place. The zeroing loop sits behind a
//     function variable so the compiler cannot drop the stores as dead.
//  2. String – wraps the buffer, exposes Reveal/Bytes/Equal for explicit
//     access and redacts itself in fmt, slog and JSON output.
//  3. Lifetime – Burn erases immediately. Use runs a callback and burns on
//     every exit path. A runtime cleanup erases the buffer when the *String
//     becomes unreachable, but it is a backstop only: the collector gives no
//     promise about when (or whether) it runs.
//
// # Usage
//
//	import "github.com/dmitrymomot/secureconfig/pkg/scrub"
//
//	secret := scrub.New(plaintext) // adopts plaintext, no copy
//	defer secret.Burn()
//
//	db, err := sql.Open("postgres", dsn(secret.Reveal()))
//
// Or scoped:
//
//	err := scrub.Use(secret, func(s *scrub.String) error {
//	    return client.Login(user, s.Reveal())
//	})
//
// # Reading after Burn
//
// Reading a burned String is not an error: Reveal returns a string of the
// original length made of zero bytes. Call Burned to find out whether the
// value is still live.
//
// # Limitations
//
// Copies made by the caller (string concatenation, []byte(s.Reveal()), etc.)
// are outside the package's reach. The garbage collector may also have moved
// the buffer before it was erased. Treat the package as damage control, not
// as protection against a process memory dump.
package scrub
