package task

import (
	"bytes"
	"encoding/json"
)

// Optional is a JSON field of a partial update. Set reports whether the key was present in the payload;
// Valid is false when it was present with an explicit null.
type Optional[T any] struct {
	V     T
	Set   bool
	Valid bool
}

func OptionalFrom[T any](v T) Optional[T] {
	return Optional[T]{V: v, Set: true, Valid: true}
}

// OptionalNull returns an Optional holding an explicit null.
func OptionalNull[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// Ptr returns a pointer to the value, or nil when it is null or absent.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.V
	return &v
}

// UnmarshalJSON is only called by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.V, o.Valid = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &o.V); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.V)
}
