// Package logger provides a small factory around log/slog plus attribute
// helpers that keep field names consistent across the config stores.
//
// # Usage
//
//	import "github.com/dmitrymomot/secureconfig/pkg/logger"
//
//	log := logger.New(
//	    logger.WithTextFormatter(),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithComponent("config"),
//	)
//
//	store := iniconfig.New(iniconfig.WithKeeper(k), iniconfig.WithLogger(log))
//
// Stores log section and key names, key ids and sources, never values:
//
//	log.Debug("value decrypted", logger.Section("database"), logger.Key("password"))
//
// # Configuration
//
//   - WithFormat / WithTextFormatter / WithJSONFormatter – output format.
//   - WithLevel / WithLevelName – minimum level.
//   - WithOutput – destination writer (stdout by default).
//   - WithAttr / WithComponent – static attributes.
//
// Components that accept an optional *slog.Logger use OrDiscard so a nil
// logger silences them.
//
// # Error Handling
//
// Error produces an attribute only for a non-nil error:
//
//	log.Warn("decrypt failed", logger.Error(err))
package logger
