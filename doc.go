// Package fetchkit is a client-side request and cache-addressing engine.
// Endpoints are declared once as descriptors (method, path template,
// optional schemas) and registered under a group; per call, fetchkit
// produces a deterministic hierarchical cache key, assembles and validates
// the network request through an interceptor pipeline, and applies a
// group-wide invalidation rule after successful mutations.
//
//	client := fetchkit.NewClient("https://api.example.com").
//	    WithStore(store.NewMemory())
//
//	users := client.Group("users")
//	getUser := users.MustRegister("get", fetchkit.Get("/users/:id").
//	    ResponseSchema(fetchkit.Struct[User]()))
//
//	user, err := fetchkit.Call[User](ctx, getUser, fetchkit.CallOptions{
//	    Params: fetchkit.Params{"id": 123},
//	})
//
// Cache keys are canonical: two calls with set-equal parameters address
// the same entry regardless of the order the caller supplied them in.
// Reactive bindings, the cache's read/write policy, and retries are out of
// scope; fetchkit talks to a pluggable Store and Transport at those
// boundaries.
package fetchkit
