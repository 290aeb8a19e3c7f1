// Package redis keeps the cross-match win leaderboard in a Redis sorted set.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key the table writes.
const KeyPrefix = "conquest:"

// Client is the leaderboard store.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient dials redisURL and fails fast if the server does not answer.
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	c := Wrap(redis.NewClient(opts))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Wrap builds a Client on an existing connection.
func Wrap(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, prefix: KeyPrefix}
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *Client) key(name string) string {
	return c.prefix + name
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
