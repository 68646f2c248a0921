package fetchkit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// CallOptions carries the per-call inputs: path parameters, query
// parameters, the request body, and any extra headers. All fields are
// optional; the zero value is a bare call.
type CallOptions struct {
	// Params supplies values for the path template's :name tokens.
	Params Params
	// Query is a map[string]any or a struct; see EncodeQuery.
	Query any
	// Body is serialized as JSON for body-admitting methods.
	Body any
	// Header entries are applied on top of the client's defaults.
	Header http.Header
}

// Call executes a registered endpoint and returns the decoded (and, when a
// response schema is configured, normalized) result.
//
// Stages run strictly in order and short-circuit on the first failure:
// build, body validation, request interceptors, transmit, response
// interceptors, status check, decode, response validation. A missing path
// parameter or a request-side validation failure aborts before any network
// activity; a cancelled context is reported as the context's error,
// distinct from a network failure.
func (e *Endpoint) Call(ctx context.Context, opts CallOptions) (any, error) {
	if e.client == nil {
		return nil, &ConfigurationError{
			Location: e.path,
			Message:  "endpoint is not registered; bind it with Group.Register first",
		}
	}
	return e.client.do(ctx, e, opts)
}

// Call executes a registered endpoint and decodes the result into Res.
// This is the typed surface for statically annotated call sites; the
// annotation is checked by decoding, not derived from the descriptor.
func Call[Res any](ctx context.Context, e *Endpoint, opts CallOptions) (Res, error) {
	var out Res
	value, err := e.Call(ctx, opts)
	if err != nil {
		return out, err
	}
	if value == nil {
		return out, nil
	}
	if typed, ok := value.(Res); ok {
		return typed, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return out, fmt.Errorf("fetchkit: response is not representable as %T: %w", out, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("fetchkit: response is not representable as %T: %w", out, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, e *Endpoint, opts CallOptions) (any, error) {
	req, err := c.buildRequest(e, opts)
	if err != nil {
		return nil, err
	}

	if err := validateBody(e, opts.Body); err != nil {
		return nil, err
	}

	req, err = applyRequestInterceptors(ctx, req, c.reqInterceptors)
	if err != nil {
		return nil, err
	}

	res, err := c.transmit(ctx, e, req)
	if err != nil {
		return nil, err
	}

	res, err = applyResponseInterceptors(ctx, res, c.resInterceptors)
	if err != nil {
		return nil, err
	}

	if !res.IsSuccess() {
		return nil, newStatusError(res.StatusCode, res.StatusText, decodeBody(res))
	}

	decoded := decodeBody(res)

	if e.responseSchema != nil {
		normalized, err := e.responseSchema.Validate(decoded)
		if err != nil {
			return nil, newValidationError(SideResponse, err)
		}
		decoded = normalized
	}

	if e.method.isMutation() {
		if err := c.invalidateAfterMutation(ctx, e); err != nil {
			return nil, err
		}
	}
	return decoded, nil
}

// buildRequest assembles the URL, headers, and serialized body. Query
// validation happens here because a query schema failure must abort as
// early as a malformed path would.
func (c *Client) buildRequest(e *Endpoint, opts CallOptions) (*Request, error) {
	path, err := SubstitutePath(e.path, opts.Params)
	if err != nil {
		return nil, err
	}

	query := opts.Query
	if e.querySchema != nil && query != nil {
		normalized, err := e.querySchema.Validate(query)
		if err != nil {
			return nil, newValidationError(SideRequest, err)
		}
		query = normalized
	}
	rawQuery, err := EncodeQuery(query)
	if err != nil {
		return nil, err
	}

	fullURL := strings.TrimSuffix(c.baseURL, "/") + path
	if rawQuery != "" {
		fullURL += "?" + rawQuery
	}

	header := c.defaultHeaders.Clone()
	if header == nil {
		header = make(http.Header)
	}
	for key, values := range opts.Header {
		for _, v := range values {
			header.Add(key, v)
		}
	}

	req := &Request{Method: e.method, URL: fullURL, Header: header}

	if opts.Body != nil && e.method.admitsBody() {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("fetchkit: serialize request body: %w", err)
		}
		req.Body = data
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	return req, nil
}

// validateBody runs the request schema for body-admitting methods. Without
// a schema the body passes through untouched.
func validateBody(e *Endpoint, body any) error {
	if !e.method.admitsBody() || e.requestSchema == nil {
		return nil
	}
	if _, err := e.requestSchema.Validate(body); err != nil {
		return newValidationError(SideRequest, err)
	}
	return nil
}

// transmit invokes the transport. Cancellation is checked first and always
// reported as the context's own error so callers can tell an aborted call
// from a network failure.
func (c *Client) transmit(ctx context.Context, e *Endpoint, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := c.transport.Send(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log().Error("transport failure",
			slog.String("endpoint", e.ID()),
			slog.String("url", req.URL),
			slog.Any("error", err))
		return nil, newNetworkError(err)
	}
	return res, nil
}

// decodeBody best-effort decodes a response body: structured JSON first,
// raw text next, nil when there is no body at all. Success and error
// bodies decode the same way.
func decodeBody(res *Response) any {
	if len(res.Body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(res.Body, &v); err == nil {
		return v
	}
	return string(res.Body)
}
