/*
Copyright 2025 GeoPredict Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package redis_db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps a go-redis universal client for a single Redis instance.
type Redis struct {
	address string
	client  redis.UniversalClient
}

// ParseRedisURL parses a Redis DNS entry into client options. It accepts
// both docker-style addresses (redis:6379) and redis:// URLs with
// credentials.
func ParseRedisURL(rawURL string) (*redis.Options, error) {
	// Don't modify docker-style addresses (e.g. redis:6379)
	if strings.Count(rawURL, ":") == 1 && !strings.Contains(rawURL, "@") && !strings.Contains(rawURL, "//") {
		return &redis.Options{Addr: rawURL}, nil
	}

	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		// Fall back to treating the whole string as host:port with an
		// optional password@ prefix.
		host := rawURL
		var password string
		if parts := strings.Split(rawURL, "@"); len(parts) == 2 {
			password = strings.TrimPrefix(parts[0], "redis://")
			host = parts[1]
		}
		opts = &redis.Options{Addr: host, Password: password, DB: 0}
	}
	return opts, nil
}

// NewRedisClient creates a Redis client from the configured DNS entry and
// verifies connectivity with a ping.
func NewRedisClient(address string) (*Redis, error) {
	if address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	opts, err := ParseRedisURL(address)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address %q: %w", address, err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{address: address, client: client}, nil
}

// Client returns the underlying go-redis client.
func (r *Redis) Client() redis.UniversalClient {
	return r.client
}
