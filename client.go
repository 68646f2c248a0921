package fetchkit

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// Client is the central registry for endpoint descriptors and the engine
// that executes calls against them. It owns the base URL, default headers,
// the ordered interceptor chains, the transport, and the cache store.
//
// Configuration is frozen once calls begin: the With* methods are meant for
// construction time, and concurrent calls read the configured state without
// synchronization.
type Client struct {
	baseURL         string
	defaultHeaders  http.Header
	transport       Transport
	store           Store
	reqInterceptors []RequestInterceptor
	resInterceptors []ResponseInterceptor
	logger          *slog.Logger

	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// NewClient creates a client that resolves endpoint paths against baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:        baseURL,
		defaultHeaders: make(http.Header),
		transport:      NewHTTPTransport(nil),
		endpoints:      make(map[string]*Endpoint),
	}
}

// WithDefaultHeader sets a header applied to every outgoing request.
// It returns the client for chaining.
func (c *Client) WithDefaultHeader(key, value string) *Client {
	c.defaultHeaders.Set(key, value)
	return c
}

// WithTransport replaces the transport collaborator. The default is an
// HTTPTransport backed by net/http.
func (c *Client) WithTransport(t Transport) *Client {
	c.transport = t
	return c
}

// WithStore attaches the cache store that invalidation targets are handed
// to. Without a store, mutations complete but invalidate nothing.
func (c *Client) WithStore(s Store) *Client {
	c.store = s
	return c
}

// WithRequestInterceptor appends an interceptor to the outgoing chain.
// Interceptors run in the order added.
func (c *Client) WithRequestInterceptor(i RequestInterceptor) *Client {
	c.reqInterceptors = append(c.reqInterceptors, i)
	return c
}

// WithResponseInterceptor appends an interceptor to the incoming chain.
func (c *Client) WithResponseInterceptor(i ResponseInterceptor) *Client {
	c.resInterceptors = append(c.resInterceptors, i)
	return c
}

// WithLogger sets a custom logger. If not set, slog.Default() is used.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Group returns the namespace under which endpoints register. The group
// name is the first element of every cache key the group's endpoints
// produce, and the unit of automatic invalidation.
func (c *Client) Group(name string) *Group {
	return &Group{client: c, name: name}
}

// Endpoint returns the registered endpoint for the "group.name" identity.
func (c *Client) Endpoint(id string) (*Endpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ep, ok := c.endpoints[id]
	return ep, ok
}

// Group namespaces a set of endpoints that share cache-invalidation
// identity.
type Group struct {
	client *Client
	name   string
}

// Name returns the group's name.
func (g *Group) Name() string { return g.name }

// Register validates the descriptor and binds it to the group under the
// given operation name. The returned endpoint is ready to call. A
// malformed descriptor returns a ConfigurationError naming the
// "group.name" location; registration is the only point where descriptor
// validation runs.
func (g *Group) Register(name string, ep *Endpoint) (*Endpoint, error) {
	location := g.name + "." + name
	if err := validateEndpoint(ep, location); err != nil {
		return nil, err
	}

	ep.group = g.name
	ep.name = name
	ep.client = g.client
	ep.paramNames = ExtractParamNames(ep.path)

	g.client.mu.Lock()
	defer g.client.mu.Unlock()
	if _, exists := g.client.endpoints[location]; exists {
		g.client.log().Warn("duplicate endpoint registration",
			slog.String("group", g.name),
			slog.String("endpoint", name))
	}
	g.client.endpoints[location] = ep
	return ep, nil
}

// MustRegister is Register for program-literal descriptors; it panics on a
// malformed one.
func (g *Group) MustRegister(name string, ep *Endpoint) *Endpoint {
	registered, err := g.Register(name, ep)
	if err != nil {
		panic(fmt.Sprintf("fetchkit: %v", err))
	}
	return registered
}
