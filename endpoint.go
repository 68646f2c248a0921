package fetchkit

import (
	"fmt"
	"strings"
)

// Method is an HTTP verb recognized by the engine.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// admitsBody reports whether the method carries a request body.
func (m Method) admitsBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// isMutation reports whether a successful call should trigger cache
// invalidation. Queries never do.
func (m Method) isMutation() bool {
	return m != MethodGet
}

func validMethod(m Method) bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// Endpoint is the static declaration of one remote operation: an HTTP
// method, a path template with :name parameter tokens, and optional request,
// response, and query schemas. Build one with Get, Post, Put, Patch, or
// Delete, attach schemas with the fluent setters, then bind it to a client
// with Group.Register. A registered endpoint is immutable.
type Endpoint struct {
	method Method
	path   string

	// Raw schema values as supplied by the caller. They are checked for
	// the validation capability at registration, not before.
	rawRequestSchema  any
	rawResponseSchema any
	rawQuerySchema    any

	requestSchema  Schema
	responseSchema Schema
	querySchema    Schema

	// Set by Group.Register.
	paramNames []string
	group      string
	name       string
	client     *Client
}

// Get declares a GET endpoint for the given path template.
func Get(path string) *Endpoint { return &Endpoint{method: MethodGet, path: path} }

// Post declares a POST endpoint for the given path template.
func Post(path string) *Endpoint { return &Endpoint{method: MethodPost, path: path} }

// Put declares a PUT endpoint for the given path template.
func Put(path string) *Endpoint { return &Endpoint{method: MethodPut, path: path} }

// Patch declares a PATCH endpoint for the given path template.
func Patch(path string) *Endpoint { return &Endpoint{method: MethodPatch, path: path} }

// Delete declares a DELETE endpoint for the given path template.
func Delete(path string) *Endpoint { return &Endpoint{method: MethodDelete, path: path} }

// NewEndpoint declares an endpoint with an arbitrary method. The method is
// checked at registration.
func NewEndpoint(method Method, path string) *Endpoint {
	return &Endpoint{method: method, path: path}
}

// RequestSchema attaches a request body schema. Only legal on POST, PUT,
// and PATCH endpoints; enforced at registration.
func (e *Endpoint) RequestSchema(s any) *Endpoint {
	e.rawRequestSchema = s
	return e
}

// ResponseSchema attaches a response schema. On success the caller receives
// the schema's normalized output rather than the raw decoded value.
func (e *Endpoint) ResponseSchema(s any) *Endpoint {
	e.rawResponseSchema = s
	return e
}

// QuerySchema attaches a schema for the call's query parameters, validated
// while the request is assembled.
func (e *Endpoint) QuerySchema(s any) *Endpoint {
	e.rawQuerySchema = s
	return e
}

// Method returns the endpoint's HTTP method.
func (e *Endpoint) Method() Method { return e.method }

// Path returns the endpoint's path template.
func (e *Endpoint) Path() string { return e.path }

// ParamNames returns the path parameter names declared in the template, in
// token order. Only populated once the endpoint is registered.
func (e *Endpoint) ParamNames() []string { return e.paramNames }

// ID returns the registered "group.name" identity, or "" before
// registration.
func (e *Endpoint) ID() string {
	if e.group == "" {
		return ""
	}
	return e.group + "." + e.name
}

// validateEndpoint checks a descriptor for structural correctness. It runs
// once per endpoint at registration and is never re-invoked per call.
func validateEndpoint(e *Endpoint, location string) error {
	if !validMethod(e.method) {
		return &ConfigurationError{
			Location: location,
			Message:  fmt.Sprintf("method %q is not one of GET, POST, PUT, PATCH, DELETE", string(e.method)),
		}
	}
	if e.path == "" || !strings.HasPrefix(e.path, "/") {
		return &ConfigurationError{
			Location: location,
			Message:  fmt.Sprintf("path %q must be non-empty and begin with /", e.path),
		}
	}
	if e.rawRequestSchema != nil && !e.method.admitsBody() {
		return &ConfigurationError{
			Location: location,
			Message: fmt.Sprintf("%s endpoints cannot carry a request schema; remove the schema or change the method",
				string(e.method)),
		}
	}

	var err error
	if e.requestSchema, err = resolveSchema(e.rawRequestSchema, "request", location); err != nil {
		return err
	}
	if e.responseSchema, err = resolveSchema(e.rawResponseSchema, "response", location); err != nil {
		return err
	}
	if e.querySchema, err = resolveSchema(e.rawQuerySchema, "query", location); err != nil {
		return err
	}
	return nil
}

func resolveSchema(raw any, kind, location string) (Schema, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := asSchema(raw)
	if !ok {
		return nil, &ConfigurationError{
			Location: location,
			Message: fmt.Sprintf("%s schema of type %T does not expose a Validate(any) (any, error) capability",
				kind, raw),
		}
	}
	return s, nil
}

// CacheKey returns the key addressing this call's cached result. The query
// argument accepts what EncodeQuery accepts; structs are flattened to a
// parameter object first so struct and map callers address the same entry.
func (e *Endpoint) CacheKey(params Params, query any) (Key, error) {
	queryMap, err := queryToMap(query)
	if err != nil {
		return Key{}, err
	}
	return NewKey(e.group, e.name, params, queryMap), nil
}
