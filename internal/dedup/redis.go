// Package dedup claims notification keys in Redis so concurrent senders agree on
// who delivers a draft. A nil *Claimer claims everything; the database unique key
// remains the final guard.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultPrefix = "freshtrack:notify"

type Claimer struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New wraps an existing client. ttl bounds how long a claim blocks re-delivery.
func New(client *redis.Client, ttl time.Duration) *Claimer {
	return &Claimer{client: client, prefix: defaultPrefix, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func (c *Claimer) key(k string) string { return c.prefix + ":" + k }

// Claim reports true when this caller is the first to claim key within the ttl.
func (c *Claimer) Claim(ctx context.Context, key string) (bool, error) {
	if c == nil {
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, c.key(key), time.Now().UTC().Format(time.RFC3339), c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so a failed delivery can be retried.
func (c *Claimer) Release(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("releasing %s: %w", key, err)
	}
	return nil
}
