package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFilePerm is the mode of files written by File.
const DefaultFilePerm os.FileMode = 0o600

// File is a Source backed by a local file.
type File struct {
	path string
	perm os.FileMode
}

// FileOption configures a File.
type FileOption func(*File)

// WithFilePerm sets the mode of written files.
func WithFilePerm(perm os.FileMode) FileOption {
	return func(f *File) {
		f.perm = perm
	}
}

// NewFile returns a Source for the file at path.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{path: path, perm: DefaultFilePerm}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// String implements fmt.Stringer.
func (f *File) String() string {
	return "file://" + f.path
}

// Read returns the file content.
func (f *File) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the file content. Data goes to a temporary file in the
// same directory which is then renamed over the target, so readers never
// observe a partial document.
func (f *File) Write(ctx context.Context, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(f.perm); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}
