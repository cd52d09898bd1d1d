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
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/geopredict/relay/config"
	"github.com/geopredict/relay/explorer"
	"github.com/geopredict/relay/model"
	"github.com/geopredict/relay/store"
	"github.com/geopredict/relay/wallet"
)

// fakeExplorer serves the read-only transaction lookup endpoint over a
// mutable set of known ledger ids.
type fakeExplorer struct {
	mu     sync.Mutex
	known  map[string]bool
	server *httptest.Server
}

func newFakeExplorer(t *testing.T, known ...string) *fakeExplorer {
	t.Helper()
	f := &fakeExplorer{known: make(map[string]bool)}
	for _, id := range known {
		f.known[id] = true
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := f.known[path.Base(r.URL.Path)]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeExplorer) add(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.known[id] = true
}

// newTestRelay wires a relay over an in-memory store and a fake explorer,
// with a mock config so webhook sends resolve to a no-op.
func newTestRelay(t *testing.T, exp *fakeExplorer) *Relay {
	t.Helper()
	config.MockConfig(&config.Configuration{ProjectName: "relay-test"})
	s := store.NewInMemory(model.ModePrivacy)
	probe := explorer.NewProbe(exp.server.URL, 5*time.Second)
	return NewRelayWithDeps(s, probe)
}

type statusReply struct {
	status wallet.Status
	err    error
}

// scriptedStatus replays a fixed sequence of replies, repeating the last one
// once the script runs out, and counts every call.
type scriptedStatus struct {
	mu      sync.Mutex
	replies []statusReply
	calls   int
}

func (s *scriptedStatus) TransactionStatus(_ context.Context, _ string) (wallet.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.replies) == 0 {
		return wallet.Status{Status: "pending"}, nil
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply.status, reply.err
}

func (s *scriptedStatus) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// scriptedHistory returns a fixed history (or error) and counts calls.
type scriptedHistory struct {
	mu      sync.Mutex
	history wallet.History
	err     error
	calls   int
}

func (h *scriptedHistory) RequestTransactionHistory(_ context.Context, _ string) (wallet.History, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.err != nil {
		return wallet.History{}, h.err
	}
	return h.history, nil
}

func (h *scriptedHistory) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// fakeSubmitter hands back a canned wallet-local id.
type fakeSubmitter struct {
	walletTxID string
	err        error
	lastReq    wallet.ExecuteRequest
}

func (f *fakeSubmitter) ExecuteTransaction(_ context.Context, req wallet.ExecuteRequest) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.walletTxID, nil
}
