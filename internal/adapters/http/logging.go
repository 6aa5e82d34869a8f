package http

import (
	"context"
	"log/slog"
)

// httpLog scopes the default logger to this adapter and ties every line to
// the request id, so access logs and handler errors correlate.
func httpLog(ctx context.Context) *slog.Logger {
	return slog.Default().With("component", "http", "request_id", requestIDFromContext(ctx))
}

func logHandlerError(ctx context.Context, handler string, statusCode int, code string, err error) {
	logger := httpLog(ctx).With("handler", handler, "status", statusCode, "code", code)
	if err != nil {
		logger = logger.With("error", err.Error())
	}
	if statusCode >= 500 {
		logger.ErrorContext(ctx, "request failed")
		return
	}
	logger.WarnContext(ctx, "request rejected")
}
