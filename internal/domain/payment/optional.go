package payment

import (
	"context"
	"encoding/json"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Optional is a value that may be absent. It marshals to null when unset.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (v T, ok bool) {
	return o.Value, o.Set
}

// Or returns the value, or def when unset.
func (o Optional[T]) Or(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// BestEffort runs fn and returns its result as an Optional. Failures are
// logged and never returned.
func BestEffort[T any](ctx context.Context, op string, fn func(ctx context.Context) (T, error)) Optional[T] {
	v, err := fn(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Best effort call failed",
			zap.String("op", op),
			zap.Error(err),
		)
		return Optional[T]{}
	}
	return Some(v)
}
