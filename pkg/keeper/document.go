package keeper

import (
	"bytes"
	"context"

	"github.com/dmitrymomot/secureconfig/pkg/scrub"
	"github.com/dmitrymomot/secureconfig/pkg/source"
)

// EncryptDocument encrypts the whole content of src as one value and writes
// the resulting token, followed by a newline, to dst.
func (k *Keeper) EncryptDocument(ctx context.Context, src, dst source.Source) error {
	if k == nil {
		return ErrNoKeeper
	}

	plaintext, err := src.Read(ctx)
	if err != nil {
		return err
	}
	defer scrub.Erase(plaintext)

	token, err := k.EncryptBytes(plaintext)
	if err != nil {
		return err
	}
	return dst.Write(ctx, []byte(token+"\n"))
}

// DecryptDocument reads a token written by EncryptDocument from src.
// Surrounding whitespace is ignored.
func (k *Keeper) DecryptDocument(ctx context.Context, src source.Source) (*scrub.String, error) {
	if k == nil {
		return nil, ErrNoKeeper
	}

	data, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	return k.Decrypt(string(bytes.TrimSpace(data)))
}

// RestoreDocument decrypts the token in src and writes the plaintext to dst.
// Nothing is written when decryption fails.
func (k *Keeper) RestoreDocument(ctx context.Context, src, dst source.Source) error {
	plaintext, err := k.DecryptDocument(ctx, src)
	if err != nil {
		return err
	}
	return scrub.Use(plaintext, func(p *scrub.String) error {
		return dst.Write(ctx, p.Bytes())
	})
}

// EncryptFile encrypts the file at in and writes the token to out.
// The output file is created with 0600 permissions.
func (k *Keeper) EncryptFile(in, out string) error {
	return k.EncryptDocument(context.Background(), source.NewFile(in), source.NewFile(out))
}

// DecryptFile decrypts a file written by EncryptFile.
func (k *Keeper) DecryptFile(path string) (*scrub.String, error) {
	return k.DecryptDocument(context.Background(), source.NewFile(path))
}

// RestoreFile decrypts the file at in and writes the plaintext to out.
func (k *Keeper) RestoreFile(in, out string) error {
	return k.RestoreDocument(context.Background(), source.NewFile(in), source.NewFile(out))
}
