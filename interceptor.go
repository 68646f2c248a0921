package fetchkit

import (
	"context"
	"fmt"
)

// RequestInterceptor transforms the assembled request before transmission.
// Interceptors run in the order they were added; each receives the value
// the previous one returned and must return a non-nil request honoring the
// same contract (method, headers, and body may change, the shape may not).
// Returning an error short-circuits the call before any network activity.
//
// An interceptor may block, e.g. to fetch an auth token.
type RequestInterceptor func(ctx context.Context, req *Request) (*Request, error)

// ResponseInterceptor transforms the raw response after transmission,
// before status inspection and decoding. Ordering and contract rules match
// RequestInterceptor.
type ResponseInterceptor func(ctx context.Context, res *Response) (*Response, error)

// applyRequestInterceptors runs the chain left to right, threading each
// interceptor's output into the next.
func applyRequestInterceptors(ctx context.Context, req *Request, chain []RequestInterceptor) (*Request, error) {
	for i, interceptor := range chain {
		next, err := interceptor(ctx, req)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("fetchkit: request interceptor %d returned nil request", i)
		}
		req = next
	}
	return req, nil
}

func applyResponseInterceptors(ctx context.Context, res *Response, chain []ResponseInterceptor) (*Response, error) {
	for i, interceptor := range chain {
		next, err := interceptor(ctx, res)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("fetchkit: response interceptor %d returned nil response", i)
		}
		res = next
	}
	return res, nil
}
