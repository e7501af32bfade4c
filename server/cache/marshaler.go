package cache

import (
	"context"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
)

// Marshaler is the common interface between the gocache marshaler used for
// redis stores and the plain cache used for in-memory stores.
type Marshaler interface {
	Get(ctx context.Context, key any, returnObj any) (any, error)
	Set(ctx context.Context, key any, object any, options ...store.Option) error
	Delete(ctx context.Context, key any) error
}

// marshalerWraper adapts a plain cache to the Marshaler interface. In-memory
// stores keep the object itself, so no serialization is involved.
type marshalerWraper struct {
	cache cache.CacheInterface[any]
}

func (m *marshalerWraper) Get(ctx context.Context, key any, _ any) (any, error) {
	return m.cache.Get(ctx, key.(string))
}

func (m *marshalerWraper) Set(ctx context.Context, key any, object any, options ...store.Option) error {
	return m.cache.Set(ctx, key.(string), object, options...)
}

func (m *marshalerWraper) Delete(ctx context.Context, key any) error {
	return m.cache.Delete(ctx, key.(string))
}
