package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Section records a config section name under the key "section".
func Section(name string) slog.Attr {
	return slog.String("section", name)
}

// Key records a config key name under the key "key". Never pass a value.
func Key(name string) slog.Attr {
	return slog.String("key", name)
}

// Path records a dotted document path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Encrypted records whether a value is stored encrypted.
func Encrypted(v bool) slog.Attr {
	return slog.Bool("encrypted", v)
}

// KeyID records a keeper key fingerprint under the key "key_id".
// If id is empty, it returns an empty Attr.
func KeyID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("key_id", id)
}

// Source records a persistence location (file path, bucket/key, redis key).
func Source(name string) slog.Attr {
	return slog.String("source", name)
}

// Count records a number of processed items under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
