package cache

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/eko/gocache/store/redis/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// DefaultSessionCacheExpirationMax is the upper bound for the expiration of a cached session token
	DefaultSessionCacheExpirationMax = 10 * time.Minute
	// DefaultSessionCacheExpirationMin is the lower bound for the expiration of a cached session token
	DefaultSessionCacheExpirationMin = 5 * time.Minute
	// DefaultSessionCacheCleanupInterval is the interval at which expired entries are removed from the in-memory store
	DefaultSessionCacheCleanupInterval = 30 * time.Second
)

// SessionTokenData is the cached result of a session token lookup.
type SessionTokenData struct {
	TokenID        string
	TokenName      string
	UserID         string
	UserEmail      string
	ExpirationDate *time.Time
}

// SessionCache is an interface that wraps the basic Get, Set and Delete methods for SessionTokenData objects.
type SessionCache interface {
	Get(ctx context.Context, hashedToken string) (*SessionTokenData, error)
	Set(ctx context.Context, hashedToken string, data *SessionTokenData, expiration time.Duration) error
	Delete(ctx context.Context, hashedToken string) error
}

// SessionCacheImpl is a struct that implements the SessionCache interface.
type SessionCacheImpl struct {
	cache Marshaler
}

// NewSessionCache creates a new SessionCacheImpl object.
func NewSessionCache(store store.StoreInterface) *SessionCacheImpl {
	simpleCache := cache.New[any](store)
	if store.GetType() == redis.RedisType {
		m := marshaler.New(simpleCache)
		return &SessionCacheImpl{cache: m}
	}
	return &SessionCacheImpl{cache: &marshalerWraper{simpleCache}}
}

func (c *SessionCacheImpl) Get(ctx context.Context, hashedToken string) (*SessionTokenData, error) {
	v, err := c.cache.Get(ctx, hashedToken, new(SessionTokenData))
	if err != nil {
		return nil, err
	}

	switch data := v.(type) {
	case *SessionTokenData:
		return data, nil
	case []byte:
		return unmarshalSessionTokenData(data)
	}

	return nil, fmt.Errorf("unexpected type: %T", v)
}

func (c *SessionCacheImpl) Set(ctx context.Context, hashedToken string, data *SessionTokenData, expiration time.Duration) error {
	return c.cache.Set(ctx, hashedToken, data, store.WithExpiration(expiration))
}

func (c *SessionCacheImpl) Delete(ctx context.Context, hashedToken string) error {
	return c.cache.Delete(ctx, hashedToken)
}

func unmarshalSessionTokenData(data []byte) (*SessionTokenData, error) {
	returnObj := &SessionTokenData{}
	err := msgpack.Unmarshal(data, returnObj)
	if err != nil {
		return nil, err
	}
	return returnObj, nil
}

// EntryExpiration returns a random duration between the configured expiration bounds.
func EntryExpiration() time.Duration {
	r := rand.Intn(int(DefaultSessionCacheExpirationMax.Milliseconds()-DefaultSessionCacheExpirationMin.Milliseconds())) + int(DefaultSessionCacheExpirationMin.Milliseconds())
	return time.Duration(r) * time.Millisecond
}
