package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache fronts the customer statement projection with a Redis TTL cache.
// A nil Cache (or one built on a nil client) degrades to loading straight
// from the repository.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func statementKey(rut string) string {
	return fmt.Sprintf("reports:statement:%s", rut)
}

// FetchStatement loads the cached statement or populates it via loader.
func (c *Cache) FetchStatement(ctx context.Context, rut string, loader func(context.Context) (CustomerStatement, error)) (CustomerStatement, error) {
	if loader == nil {
		return CustomerStatement{}, errors.New("reporting: loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key := statementKey(rut)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var statement CustomerStatement
		if err := json.Unmarshal(payload, &statement); err == nil {
			return statement, nil
		}
		// Unreadable entry: fall through and rebuild it.
	} else if err != redis.Nil {
		return CustomerStatement{}, fmt.Errorf("reporting: cache get %s: %w", key, err)
	}

	statement, err := loader(ctx)
	if err != nil {
		return CustomerStatement{}, err
	}
	raw, err := json.Marshal(statement)
	if err != nil {
		return CustomerStatement{}, fmt.Errorf("reporting: cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return CustomerStatement{}, fmt.Errorf("reporting: cache set %s: %w", key, err)
	}
	return statement, nil
}

// Invalidate drops the cached statement for one customer.
func (c *Cache) Invalidate(ctx context.Context, rut string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, statementKey(rut)).Err()
}
