package restless

import "log/slog"

// LoggingHooks returns CallContext options that log each dispatch with
// structured attributes: a debug record when a call enters the pipeline
// and an info record once the handler and after-phase complete.
//
// Failed calls produce no completion record; the error is returned to the
// dispatching caller, which owns failure logging.
//
//	call := restless.NewCallContext(restless.LoggingHooks(logger)...)
func LoggingHooks(logger *slog.Logger) []Option {
	return []Option{
		WithBefore(func(c *Client) error {
			logger.Debug("dispatching endpoint",
				slog.String("method", c.Endpoint.Method().String()),
				slog.String("path", c.Endpoint.Path()),
			)
			return nil
		}),
		WithAfter(func(c *Client) error {
			logger.Info("endpoint dispatched",
				slog.String("method", c.Endpoint.Method().String()),
				slog.String("path", c.Endpoint.Path()),
				slog.Int("status", c.Response().Status()),
			)
			return nil
		}),
	}
}
