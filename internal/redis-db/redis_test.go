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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantAddr     string
		wantPassword string
	}{
		{name: "docker style", url: "redis:6379", wantAddr: "redis:6379"},
		{name: "localhost", url: "localhost:6379", wantAddr: "localhost:6379"},
		{name: "redis url", url: "redis://localhost:6379", wantAddr: "localhost:6379"},
		{name: "redis url with password", url: "redis://:secret@localhost:6380", wantAddr: "localhost:6380", wantPassword: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseRedisURL(tt.url)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantPassword, opts.Password)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	defer mr.Close()

	r, err := NewRedisClient(mr.Addr())
	assert.NoError(t, err)
	assert.NotNil(t, r.Client())

	_, err = NewRedisClient("")
	assert.Error(t, err)
}
