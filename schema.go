package fetchkit

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Schema is the validation capability an endpoint descriptor may carry for
// its request body, query parameters, or response. Validate checks value
// and returns the normalized result, which may differ from the input:
// defaults filled in, types coerced, unknown fields dropped.
type Schema interface {
	Validate(value any) (any, error)
}

// SchemaFunc adapts a plain function to the Schema interface.
type SchemaFunc func(value any) (any, error)

// Validate implements Schema.
func (f SchemaFunc) Validate(value any) (any, error) { return f(value) }

var validate = validator.New(validator.WithRequiredStructEnabled())

// StructSchema validates values against a struct type T using
// go-playground/validator tags. Input that is not already a T is coerced
// through a JSON round trip, so decoded response maps normalize into typed
// structs and numeric types are coerced along the way.
type StructSchema[T any] struct {
	validate *validator.Validate
}

// Struct returns a Schema for the struct type T.
//
//	type CreateUser struct {
//	    Name  string `json:"name" validate:"required"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//
//	ep := fetchkit.Post("/users").RequestSchema(fetchkit.Struct[CreateUser]())
func Struct[T any]() *StructSchema[T] {
	return &StructSchema[T]{validate: validate}
}

// Validate implements Schema. The normalized result is always a T.
func (s *StructSchema[T]) Validate(value any) (any, error) {
	out, err := s.normalize(value)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StructSchema[T]) normalize(value any) (T, error) {
	if typed, ok := value.(T); ok {
		return typed, nil
	}
	if ptr, ok := value.(*T); ok && ptr != nil {
		return *ptr, nil
	}
	var out T
	data, err := json.Marshal(value)
	if err != nil {
		return out, fmt.Errorf("value of type %T is not coercible to %s: %w", value, reflect.TypeOf(out), err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("value of type %T is not coercible to %s: %w", value, reflect.TypeOf(out), err)
	}
	return out, nil
}

// asSchema reports whether v exposes the validation capability. The check
// is structural: anything with a Validate(any) (any, error) method
// qualifies, not just values declared as Schema.
func asSchema(v any) (Schema, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.(Schema); ok {
		return s, true
	}
	if fn, ok := v.(func(any) (any, error)); ok {
		return SchemaFunc(fn), true
	}
	return nil, false
}
