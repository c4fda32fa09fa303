package source

import "context"

// Source persists the raw bytes of one config document.
//
// Implementations move bytes only. They never decrypt or re-encrypt values,
// so a document read and written back is byte-identical.
type Source interface {
	// Read returns the whole document. A missing document is reported with
	// an error matching ErrNotFound.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the whole document.
	Write(ctx context.Context, data []byte) error
}
