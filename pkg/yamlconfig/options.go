package yamlconfig

import (
	"log/slog"

	"github.com/dmitrymomot/secureconfig/pkg/keeper"
	"github.com/dmitrymomot/secureconfig/pkg/logger"
)

// Option configures a Store.
type Option func(*Store)

// WithKeeper sets the keeper used to encrypt and decrypt values.
// Without a keeper the store works in pass-through mode.
func WithKeeper(k *keeper.Keeper) Option {
	return func(s *Store) {
		s.keeper = k
	}
}

// WithLogger sets the logger; nil silences the store. Only section and key
// names are logged, never values.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = logger.OrDiscard(l)
	}
}

// WithReadOnly makes every mutating operation fail with ErrReadOnly.
// Loading and serializing still work.
func WithReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}
