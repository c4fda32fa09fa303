package scrub

import (
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"unsafe"
)

// Redacted is what a String prints in place of its content.
const Redacted = "[REDACTED]"

// String is a secret held in a buffer that is zeroed on Burn.
// The zero value is an empty, unburned secret.
type String struct {
	data   []byte
	burned atomic.Bool
}

// New returns a String that adopts b as its backing storage.
// The caller must not keep using b afterwards: it is zeroed on Burn.
func New(b []byte) *String {
	s := &String{data: b}
	if len(b) > 0 {
		// Backstop only. The cleanup receives the slice, not s, so it does not
		// keep s reachable.
		runtime.AddCleanup(s, Erase, b)
	}
	return s
}

// FromString copies v into a fresh buffer. The original string cannot be
// erased, so prefer New when the secret is already in a []byte.
func FromString(v string) *String {
	b := make([]byte, len(v))
	copy(b, v)
	return New(b)
}

// Reveal returns a read-only view of the buffer without copying it.
// The view shares memory with the String: after Burn it reads as zero bytes.
// Do not keep it beyond the String's lifetime or use it as a map key.
func (s *String) Reveal() string {
	if s == nil || len(s.data) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(s.data), len(s.data))
}

// Bytes returns the backing slice itself. Writes through it are visible in
// the String.
func (s *String) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.data
}

// Len returns the length of the secret in bytes.
func (s *String) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// Equal reports whether the secret equals v in constant time.
func (s *String) Equal(v string) bool {
	if s == nil {
		return v == ""
	}
	return subtle.ConstantTimeCompare(s.data, []byte(v)) == 1
}

// Burn zeroes the backing buffer. Calling it again is safe.
func (s *String) Burn() {
	if s == nil {
		return
	}
	Erase(s.data)
	s.burned.Store(true)
}

// Burned reports whether Burn has been called.
func (s *String) Burned() bool {
	return s != nil && s.burned.Load()
}

// String implements fmt.Stringer and never prints the secret.
func (s *String) String() string { return Redacted }

// GoString implements fmt.GoStringer for %#v.
func (s *String) GoString() string { return Redacted }

// Format implements fmt.Formatter so that every verb is redacted.
func (s *String) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, Redacted)
}

// LogValue implements slog.LogValuer.
func (s *String) LogValue() slog.Value { return slog.StringValue(Redacted) }

// MarshalJSON redacts the secret in JSON output.
func (s *String) MarshalJSON() ([]byte, error) { return []byte(`"` + Redacted + `"`), nil }

// MarshalText redacts the secret for text encoders.
func (s *String) MarshalText() ([]byte, error) { return []byte(Redacted), nil }

// Use calls fn with s and burns s when fn returns, panics included.
func Use(s *String, fn func(*String) error) error {
	defer s.Burn()
	return fn(s)
}
