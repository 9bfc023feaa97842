package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Option is a present/absent value. The zero value is None.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent value
func None[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) IsSome() bool {
	return o.ok
}

func (o Option[T]) IsNone() bool {
	return !o.ok
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// OrElse returns the value or def when absent.
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// Match calls exactly one of some or none.
func Match[T, R any](o Option[T], some func(T) R, none func() R) R {
	if o.ok {
		return some(o.value)
	}
	return none()
}

type taggedOption struct {
	Kind  string          `json:"__kind__"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON writes null for None and the bare value for Some.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON accepts null, the tagged {"__kind__": "Some"|"None"} form,
// or a bare value.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = None[T]()
		return nil
	}

	if data[0] == '{' {
		var tagged taggedOption
		if err := json.Unmarshal(data, &tagged); err == nil && tagged.Kind != "" {
			switch tagged.Kind {
			case "None":
				*o = None[T]()
				return nil
			case "Some":
				var v T
				if err := json.Unmarshal(tagged.Value, &v); err != nil {
					return fmt.Errorf("failed to decode option value: %w", err)
				}
				*o = Some(v)
				return nil
			default:
				return fmt.Errorf("unknown option kind %q", tagged.Kind)
			}
		}
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode option value: %w", err)
	}
	*o = Some(v)
	return nil
}
