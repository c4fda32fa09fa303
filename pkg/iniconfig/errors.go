package iniconfig

import "errors"

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrKeyNotFound     = errors.New("key not found")
	ErrEmptyKey        = errors.New("key name must not be empty")
	ErrReadOnly        = errors.New("config store is read-only")
	ErrParse           = errors.New("failed to parse ini document")
	ErrUnrepresentable = errors.New("value cannot be written to an ini document unchanged")
)
