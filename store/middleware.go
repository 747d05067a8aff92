package store

import (
	"log/slog"
	"time"
)

// Logger returns middleware that logs every dispatch at debug level and
// malformed actions at warn level.
func Logger(logger *slog.Logger) Middleware {
	return func(next DispatchFunc) DispatchFunc {
		return func(a Action) State {
			if a.Malformed() {
				logger.Warn("malformed action", "payload", a.Payload)
			}
			start := time.Now()
			st := next(a)
			logger.Debug("dispatch",
				"type", a.Type,
				"version", st.Version(),
				"elapsed", time.Since(start),
			)
			return st
		}
	}
}
