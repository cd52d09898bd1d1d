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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(100, time.Minute)

	require.NoError(t, c.Set(ctx, "key", true, time.Minute))

	var value bool
	require.NoError(t, c.Get(ctx, "key", &value))
	assert.True(t, value)
}

func TestLocalCacheMiss(t *testing.T) {
	c := NewLocal(100, time.Minute)

	var value bool
	err := c.Get(context.Background(), "absent", &value)
	assert.Error(t, err)
}

func TestLocalCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(100, time.Minute)

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))

	var value string
	assert.Error(t, c.Get(ctx, "key", &value))
}
