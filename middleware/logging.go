// Package middleware provides builtin fetchkit interceptors: structured
// request/response logging and request-ID injection.
package middleware

import (
	"context"
	"log/slog"

	"github.com/fetchkit/fetchkit"
)

// RequestLogger creates a request interceptor that logs every outgoing
// call using slog.
func RequestLogger(logger *slog.Logger) fetchkit.RequestInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, req *fetchkit.Request) (*fetchkit.Request, error) {
		logger.InfoContext(ctx, "request started",
			slog.String("method", string(req.Method)),
			slog.String("url", req.URL),
		)
		return req, nil
	}
}

// ResponseLogger creates a response interceptor that logs the raw status
// of every completed call. It runs before status inspection, so non-2xx
// responses are logged too.
func ResponseLogger(logger *slog.Logger) fetchkit.ResponseInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, res *fetchkit.Response) (*fetchkit.Response, error) {
		if res.IsSuccess() {
			logger.InfoContext(ctx, "request completed",
				slog.Int("status", res.StatusCode),
			)
		} else {
			logger.WarnContext(ctx, "request failed",
				slog.Int("status", res.StatusCode),
				slog.String("status_text", res.StatusText),
			)
		}
		return res, nil
	}
}
