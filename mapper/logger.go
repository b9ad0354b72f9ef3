package mapper

import (
	"go.uber.org/zap"

	"mtb-mapper/internal/emit"
)

// Logger returns the logger of the routine engine.
func Logger() *zap.Logger {
	return emit.Logger()
}

// SetLogger sets the logger of the routine engine, which reports compiled
// programs and recovered panics at debug level. Registries log through
// options.WithLogger instead. Nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	emit.SetLogger(l)
}
