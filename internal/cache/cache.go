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
package cache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
)

// Cache provides the basic operations for a cache system.
type Cache interface {
	// Set stores a value in the cache with a specified time-to-live.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get retrieves a value from the cache into data. Returns an error if
	// the key does not exist.
	Get(ctx context.Context, key string, data interface{}) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error
}

// localCache is a process-local cache with TinyLFU eviction. Explorer
// lookups are cheap to repeat across processes, so nothing here needs to
// survive a restart or be shared over Redis.
type localCache struct {
	cache *cache.Cache
}

// NewLocal creates a process-local cache holding up to size entries for ttl.
func NewLocal(size int, ttl time.Duration) Cache {
	return &localCache{
		cache: cache.New(&cache.Options{
			LocalCache: cache.NewTinyLFU(size, ttl),
		}),
	}
}

func (l *localCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return l.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: data,
		TTL:   ttl,
	})
}

func (l *localCache) Get(ctx context.Context, key string, data interface{}) error {
	return l.cache.Get(ctx, key, data)
}

func (l *localCache) Delete(ctx context.Context, key string) error {
	return l.cache.Delete(ctx, key)
}
