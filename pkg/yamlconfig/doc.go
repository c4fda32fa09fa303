// Package yamlconfig applies per-value encryption to YAML config documents.
//
// The store works on the gopkg.in/yaml.v3 node tree instead of decoded Go
// values, so a document keeps its key order, comments and anchors when it is
// written back:
//
//	database:
//	  username: some_user
//	  # rotated 2024-05-01
//	  password: ~scfg1~3f2a9c01b7de.Vh3k...
//	  port: 3306
//
// Values are addressed by dotted paths ("database.password") and sequence
// items by index ("servers.0.token"). String scalars carrying the keeper's
// sigil are decrypted on demand by Get; other scalars are returned as
// written.
package yamlconfig
