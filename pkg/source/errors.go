package source

import "errors"

var (
	// Lookup errors
	ErrNotFound = errors.New("config source not found")

	// Configuration errors
	ErrInvalidConfig      = errors.New("invalid source configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")

	// S3 errors
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// Context errors
	ErrOperationTimeout  = errors.New("operation timed out")
	ErrOperationCanceled = errors.New("operation canceled")

	// Redis errors
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
)
