package jsonconfig

import "errors"

var (
	ErrPathNotFound = errors.New("path not found")
	ErrInvalidPath  = errors.New("invalid path")
	ErrNotLeaf      = errors.New("path points to an object or array")
	ErrNotObject    = errors.New("path does not point into an object")
	ErrReadOnly     = errors.New("config store is read-only")
	ErrParse        = errors.New("failed to parse json document")
)
