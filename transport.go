package fetchkit

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds a single transport invocation when the caller's
// context carries no deadline of its own.
var DefaultHTTPTimeout = 30 * time.Second

// Request is the assembled low-level request description handed to request
// interceptors and then to the transport. Interceptors may alter the
// method, headers, and body; the shape stays fixed.
type Request struct {
	Method Method
	URL    string
	Header http.Header
	// Body is the serialized request body, nil when the call has none.
	Body []byte
}

// Clone returns a deep copy so an interceptor can derive a new request
// without mutating the one upstream interceptors saw.
func (r *Request) Clone() *Request {
	out := &Request{
		Method: r.Method,
		URL:    r.URL,
		Header: r.Header.Clone(),
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// Response is the raw transport result handed to response interceptors
// before status inspection and decoding.
type Response struct {
	StatusCode int
	// StatusText is the reason phrase for StatusCode.
	StatusText string
	Header     http.Header
	// Body holds the fully read response body. The transport owns reading
	// and closing the wire stream.
	Body []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the media type of the response body, without
// parameters such as charset.
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// Transport performs one network call. Implementations must honor ctx
// cancellation so an in-flight call can be aborted.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// HTTPTransport is the default Transport, backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client as a Transport. A nil client gets a
// dedicated http.Client with DefaultHTTPTimeout.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPTransport{client: client}
}

// Send implements Transport. The response body is read to completion and
// closed before returning.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, body)
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// statusText extracts the reason phrase, preferring the wire status line
// ("200 OK") over the standard table.
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

var _ Transport = (*HTTPTransport)(nil)
