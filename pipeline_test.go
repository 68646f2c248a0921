package fetchkit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

// fakeTransport records the last request and returns a canned response.
type fakeTransport struct {
	calls   int
	lastReq *Request
	res     *Response
	err     error
}

func (f *fakeTransport) Send(_ context.Context, req *Request) (*Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	if f.res != nil {
		return f.res, nil
	}
	return &Response{StatusCode: 200, StatusText: "OK", Header: make(http.Header)}, nil
}

// fakeStore records every invalidation target it receives.
type fakeStore struct {
	targets []Target
	err     error
}

func (f *fakeStore) Invalidate(_ context.Context, target Target) error {
	f.targets = append(f.targets, target)
	return f.err
}

func jsonResponse(status int, statusText, body string) *Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &Response{
		StatusCode: status,
		StatusText: statusText,
		Header:     header,
		Body:       []byte(body),
	}
}

func newTestClient(transport Transport) *Client {
	return NewClient("https://api.test").WithTransport(transport)
}

func TestCall_DecodesJSONResponse(t *testing.T) {
	transport := &fakeTransport{res: jsonResponse(200, "OK", `{"id":"1","name":"Ada"}`)}
	ep := newTestClient(transport).Group("users").MustRegister("get", Get("/users/:id"))

	got, err := ep.Call(context.Background(), CallOptions{Params: Params{"id": "1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"id": "1", "name": "Ada"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCall_BuildsURL(t *testing.T) {
	transport := &fakeTransport{res: jsonResponse(200, "OK", `[]`)}
	ep := newTestClient(transport).Group("users").MustRegister("posts",
		Get("/users/:userId/posts/:postId"))

	_, err := ep.Call(context.Background(), CallOptions{
		Params: Params{"userId": 1, "postId": 2},
		Query:  map[string]any{"expand": "comments"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "https://api.test/users/1/posts/2?expand=comments"
	if transport.lastReq.URL != want {
		t.Errorf("expected URL %q, got %q", want, transport.lastReq.URL)
	}
	if transport.lastReq.Method != MethodGet {
		t.Errorf("expected method GET, got %s", transport.lastReq.Method)
	}
}

func TestCall_Headers(t *testing.T) {
	transport := &fakeTransport{res: jsonResponse(200, "OK", `{}`)}
	client := newTestClient(transport).WithDefaultHeader("Authorization", "Bearer tok")
	group := client.Group("users")

	getEp := group.MustRegister("list", Get("/users"))
	if _, err := getEp.Call(context.Background(), CallOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := transport.lastReq.Header.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("expected default header applied, got %q", got)
	}
	if got := transport.lastReq.Header.Get("Content-Type"); got != "" {
		t.Errorf("expected no content type without a body, got %q", got)
	}

	postEp := group.MustRegister("create", Post("/users"))
	if _, err := postEp.Call(context.Background(), CallOptions{Body: map[string]any{"name": "Ada"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := transport.lastReq.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected json content type with a body, got %q", got)
	}
	if string(transport.lastReq.Body) != `{"name":"Ada"}` {
		t.Errorf("unexpected serialized body %q", transport.lastReq.Body)
	}
}

func TestCall_MissingParameterBoundary(t *testing.T) {
	transport := &fakeTransport{}
	ep := newTestClient(transport).Group("users").MustRegister("get", Get("/users/:id"))

	_, err := ep.Call(context.Background(), CallOptions{})
	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if missing.Parameter != "id" {
		t.Errorf("expected parameter %q, got %q", "id", missing.Parameter)
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call, transport was invoked %d times", transport.calls)
	}
}

func TestCall_BodyValidationBoundary(t *testing.T) {
	type createUser struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	transport := &fakeTransport{}
	ep := newTestClient(transport).Group("users").MustRegister("create",
		Post("/users").RequestSchema(Struct[createUser]()))

	_, err := ep.Call(context.Background(), CallOptions{Body: map[string]any{"name": "Ada"}})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Side != SideRequest {
		t.Errorf("expected request-side failure, got %q", ve.Side)
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call, transport was invoked %d times", transport.calls)
	}
}

func TestCall_NoRequestSchemaPassesBodyThrough(t *testing.T) {
	transport := &fakeTransport{res: jsonResponse(200, "OK", `{}`)}
	ep := newTestClient(transport).Group("users").MustRegister("create", Post("/users"))

	if _, err := ep.Call(context.Background(), CallOptions{Body: map[string]any{"anything": true}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport.calls != 1 {
		t.Errorf("expected one network call, got %d", transport.calls)
	}
}

func TestCall_QuerySchemaValidatedBeforeTransmit(t *testing.T) {
	type listQuery struct {
		Page int `json:"page" validate:"gte=1"`
	}

	transport := &fakeTransport{}
	ep := newTestClient(transport).Group("users").MustRegister("list",
		Get("/users").QuerySchema(Struct[listQuery]()))

	_, err := ep.Call(context.Background(), CallOptions{Query: map[string]any{"page": 0}})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Side != SideRequest {
		t.Errorf("expected request-side failure, got %q", ve.Side)
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call, transport was invoked %d times", transport.calls)
	}
}

func TestCall_RequestInterceptorOrder(t *testing.T) {
	transport := &fakeTransport{res: jsonResponse(200, "OK", `{}`)}
	var order []string
	client := newTestClient(transport).
		WithRequestInterceptor(func(_ context.Context, req *Request) (*Request, error) {
			order = append(order, "first")
			req.Header.Set("X-Trace", "first")
			return req, nil
		}).
		WithRequestInterceptor(func(_ context.Context, req *Request) (*Request, error) {
			order = append(order, "second")
			req.Header.Set("X-Trace", req.Header.Get("X-Trace")+",second")
			return req, nil
		})
	ep := client.Group("users").MustRegister("list", Get("/users"))

	if _, err := ep.Call(context.Background(), CallOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Errorf("expected in-order execution, got %v", order)
	}
	if got := transport.lastReq.Header.Get("X-Trace"); got != "first,second" {
		t.Errorf("expected chained header %q, got %q", "first,second", got)
	}
}

func TestCall_RequestInterceptorShortCircuits(t *testing.T) {
	transport := &fakeTransport{}
	boom := errors.New("no token")
	client := newTestClient(transport).
		WithRequestInterceptor(func(_ context.Context, _ *Request) (*Request, error) {
			return nil, boom
		})
	ep := client.Group("users").MustRegister("list", Get("/users"))

	if _, err := ep.Call(context.Background(), CallOptions{}); !errors.Is(err, boom) {
		t.Errorf("expected interceptor error, got %v", err)
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call, transport was invoked %d times", transport.calls)
	}
}

func TestCall_ResponseInterceptorRunsBeforeStatusCheck(t *testing.T) {
	transport := &fakeTransport{res: jsonResponse(500, "Internal Server Error", `{}`)}
	client := newTestClient(transport).
		WithResponseInterceptor(func(_ context.Context, res *Response) (*Response, error) {
			// Rewrite the response wholesale; the pipeline must inspect
			// the transformed value.
			return jsonResponse(200, "OK", `{"patched":true}`), nil
		})
	ep := client.Group("users").MustRegister("list", Get("/users"))

	got, err := ep.Call(context.Background(), CallOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"patched": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCall_NetworkErrorMapping(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	ep := newTestClient(transport).Group("users").MustRegister("list", Get("/users"))

	_, err := ep.Call(context.Background(), CallOptions{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 0 {
		t.Errorf("expected status 0, got %d", apiErr.Status)
	}
	if apiErr.StatusText != "Network Error" {
		t.Errorf("expected status text %q, got %q", "Network Error", apiErr.StatusText)
	}
	if apiErr.Message != "connection refused" {
		t.Errorf("expected underlying message, got %q", apiErr.Message)
	}
}

func TestCall_CancelledBeforeTransmit(t *testing.T) {
	transport := &fakeTransport{}
	ep := newTestClient(transport).Group("users").MustRegister("list", Get("/users"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ep.Call(ctx, CallOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call after cancellation, got %d", transport.calls)
	}

	// Cancellation is reported as itself, never as a network failure.
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("cancellation must not map to APIError")
	}
}

func TestCall_StatusErrorWithJSONBody(t *testing.T) {
	transport := &fakeTransport{res: jsonResponse(404, "Not Found", `{"error":"no such user"}`)}
	ep := newTestClient(transport).Group("users").MustRegister("get", Get("/users/:id"))

	_, err := ep.Call(context.Background(), CallOptions{Params: Params{"id": "1"}})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 404 {
		t.Errorf("expected status 404, got %d", apiErr.Status)
	}
	if apiErr.Message != "HTTP 404: Not Found" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	data, ok := apiErr.Data.(map[string]any)
	if !ok || data["error"] != "no such user" {
		t.Errorf("expected decoded error body, got %v", apiErr.Data)
	}
}

func TestCall_StatusErrorBodyFallbacks(t *testing.T) {
	// Unparseable body falls back to raw text.
	transport := &fakeTransport{res: &Response{
		StatusCode: 502,
		StatusText: "Bad Gateway",
		Header:     make(http.Header),
		Body:       []byte("upstream down"),
	}}
	ep := newTestClient(transport).Group("users").MustRegister("list", Get("/users"))

	_, err := ep.Call(context.Background(), CallOptions{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Data != "upstream down" {
		t.Errorf("expected raw text body, got %v", apiErr.Data)
	}

	// Empty body means no auxiliary data at all.
	transport.res = &Response{StatusCode: 503, StatusText: "Service Unavailable", Header: make(http.Header)}
	_, err = ep.Call(context.Background(), CallOptions{})
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Data != nil {
		t.Errorf("expected nil data for empty body, got %v", apiErr.Data)
	}
}

func TestCall_ResponseValidationBoundary(t *testing.T) {
	type user struct {
		ID    string  `json:"id"`
		Count float64 `json:"count"`
	}

	// count arrives as a string where the schema expects a number.
	transport := &fakeTransport{res: jsonResponse(200, "OK", `{"id":"1","count":"12"}`)}
	ep := newTestClient(transport).Group("users").MustRegister("get",
		Get("/users/:id").ResponseSchema(Struct[user]()))

	got, err := ep.Call(context.Background(), CallOptions{Params: Params{"id": "1"}})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Side != SideResponse {
		t.Errorf("expected response-side failure, got %q", ve.Side)
	}
	if got != nil {
		t.Errorf("caller must never receive the malformed value, got %v", got)
	}
}

func TestCall_ResponseNormalization(t *testing.T) {
	type user struct {
		ID   string `json:"id" validate:"required"`
		Name string `json:"name"`
	}

	transport := &fakeTransport{res: jsonResponse(200, "OK", `{"id":"1","name":"Ada","extra":"dropped"}`)}
	ep := newTestClient(transport).Group("users").MustRegister("get",
		Get("/users/:id").ResponseSchema(Struct[user]()))

	got, err := ep.Call(context.Background(), CallOptions{Params: Params{"id": "1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The normalized output is the typed struct, not the raw map.
	normalized, ok := got.(user)
	if !ok {
		t.Fatalf("expected normalized user struct, got %T", got)
	}
	if normalized.ID != "1" || normalized.Name != "Ada" {
		t.Errorf("unexpected normalized value %+v", normalized)
	}
}

func TestCallTyped(t *testing.T) {
	type user struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	transport := &fakeTransport{res: jsonResponse(200, "OK", `{"id":"1","name":"Ada"}`)}
	ep := newTestClient(transport).Group("users").MustRegister("get", Get("/users/:id"))

	got, err := Call[user](context.Background(), ep, CallOptions{Params: Params{"id": "1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "1" || got.Name != "Ada" {
		t.Errorf("unexpected typed result %+v", got)
	}
}

func TestCall_EndToEndOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/7" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("expand") != "posts" {
			http.Error(w, "missing expand", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"7"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL).WithTransport(NewHTTPTransport(server.Client()))
	ep := client.Group("users").MustRegister("get", Get("/users/:id"))

	got, err := ep.Call(context.Background(), CallOptions{
		Params: Params{"id": 7},
		Query:  map[string]any{"expand": "posts"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"id": "7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
