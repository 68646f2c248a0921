package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/fetchkit/fetchkit"
)

// RequestIDHeader is the header RequestID sets on outgoing requests.
const RequestIDHeader = "X-Request-Id"

// RequestID creates a request interceptor that stamps each outgoing
// request with a fresh UUID, unless the caller already set one.
func RequestID() fetchkit.RequestInterceptor {
	return func(_ context.Context, req *fetchkit.Request) (*fetchkit.Request, error) {
		if req.Header.Get(RequestIDHeader) == "" {
			req.Header.Set(RequestIDHeader, uuid.NewString())
		}
		return req, nil
	}
}
