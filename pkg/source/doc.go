// Package source provides the persistence backends config stores load from
// and save to.
//
// A Source reads and writes one document as raw bytes. Three backends are
// available:
//
//   - File: a local file, written atomically through a temporary file and a
//     rename, with owner-only permissions by default.
//   - S3: an object in Amazon S3 or an S3-compatible service (MinIO,
//     DigitalOcean Spaces) through aws-sdk-go-v2.
//   - Redis: a single string key through go-redis.
//
// # Usage
//
//	src := source.NewFile("/etc/app/config.ini")
//
//	store := iniconfig.New(iniconfig.WithKeeper(k))
//	if err := store.Load(ctx, src); err != nil {
//	    // handle error
//	}
//
// S3 and Redis configuration structs carry env tags and can be filled with
// github.com/caarlos0/env:
//
//	var cfg source.S3Config
//	if err := env.Parse(&cfg); err != nil {
//	    // handle error
//	}
//	src, err := source.NewS3(ctx, cfg)
//
// # Errors
//
// A missing document matches ErrNotFound with errors.Is regardless of the
// backend. Other errors keep the underlying cause in the chain.
package source
