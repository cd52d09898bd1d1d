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

package explorer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/geopredict/relay/internal/cache"
)

const (
	existsCacheSize = 10000
	existsCacheTTL  = time.Hour
)

// Probe answers "is this transaction finalized on the public ledger" against
// a read-only explorer endpoint. It is a pure predicate: any transport or
// server failure reads as absence, so callers keep polling instead of
// wrongly declaring success or failure.
type Probe struct {
	api    string
	client *http.Client
	cache  cache.Cache
}

// NewProbe builds a probe for the given explorer API base URL.
func NewProbe(api string, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Probe{
		api:    strings.TrimRight(api, "/"),
		client: &http.Client{Timeout: timeout},
		cache:  cache.NewLocal(existsCacheSize, existsCacheTTL),
	}
}

// Exists reports whether the ledger knows the transaction. Ledger existence
// is monotonic, so positive answers are memoized; negative answers never
// are.
func (p *Probe) Exists(ctx context.Context, ledgerTxID string) bool {
	if ledgerTxID == "" {
		return false
	}

	var cached bool
	if err := p.cache.Get(ctx, p.cacheKey(ledgerTxID), &cached); err == nil && cached {
		return true
	}

	url := fmt.Sprintf("%s/transaction/%s", p.api, ledgerTxID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logrus.Debugf("explorer: build request for %s: %v", ledgerTxID, err)
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		logrus.Debugf("explorer: lookup %s: %v", ledgerTxID, err)
		return false
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	if err := p.cache.Set(ctx, p.cacheKey(ledgerTxID), true, existsCacheTTL); err != nil {
		logrus.Debugf("explorer: cache %s: %v", ledgerTxID, err)
	}
	return true
}

func (p *Probe) cacheKey(ledgerTxID string) string {
	return "explorer:exists:" + ledgerTxID
}
