package yamlconfig

import "errors"

var (
	ErrPathNotFound = errors.New("path not found")
	ErrInvalidPath  = errors.New("invalid path")
	ErrNotLeaf      = errors.New("path points to a mapping or sequence")
	ErrNotMapping   = errors.New("path does not point into a mapping")
	ErrReadOnly     = errors.New("config store is read-only")
	ErrParse        = errors.New("failed to parse yaml document")
)
