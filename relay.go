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

package relay

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geopredict/relay/config"
	"github.com/geopredict/relay/explorer"
	redis_db "github.com/geopredict/relay/internal/redis-db"
	"github.com/geopredict/relay/model"
	"github.com/geopredict/relay/store"
)

// Relay represents the main struct for the transaction relay service. It
// binds the pending-transaction store and the explorer probe together for
// the resolver, the reconciler and the API surface.
type Relay struct {
	store store.Store
	probe *explorer.Probe
	redis redis.UniversalClient
}

// NewRelay initializes a new Relay instance from the loaded configuration.
// It connects Redis, restores the persisted transaction snapshot, and wires
// the explorer probe.
func NewRelay() (*Relay, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	redisClient, err := redis_db.NewRedisClient(configuration.Redis.Dns)
	if err != nil {
		return nil, err
	}

	newStore := store.NewStore(redisClient.Client(), model.ParseTrackingMode(configuration.Tracking.DefaultMode))
	newProbe := explorer.NewProbe(configuration.Explorer.Api, time.Duration(configuration.Explorer.TimeoutSec)*time.Second)

	return &Relay{
		store: newStore,
		probe: newProbe,
		redis: redisClient.Client(),
	}, nil
}

// NewRelayWithDeps wires a Relay from explicit collaborators. Used by tests
// and by callers that already hold a store and probe.
func NewRelayWithDeps(s store.Store, p *explorer.Probe) *Relay {
	return &Relay{store: s, probe: p}
}

// Store exposes the pending-transaction store.
func (l *Relay) Store() store.Store {
	return l.store
}

// Probe exposes the explorer probe.
func (l *Relay) Probe() *explorer.Probe {
	return l.probe
}
