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

package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/geopredict/relay/internal/broker"
	"github.com/geopredict/relay/model"
)

const (
	// PendingTxKey is the fixed key holding the serialized transaction
	// records.
	PendingTxKey = "relay:pending_txs:v1"
	// TrackingModeKey is the fixed key holding the mode policy flag.
	TrackingModeKey = "relay:tracking_mode:v1"

	// MaxTrackedTransactions caps the record set. The cap is far above any
	// realistic concurrent-pending count, so eviction only ever trims old
	// confirmed/failed history.
	MaxTrackedTransactions = 200
)

// Store is the durable record of pending/confirmed/failed transactions.
// Methods never return errors: a broken storage medium degrades to the
// in-memory snapshot, which only risks a missed confirmation that the next
// reconciler sweep retries.
type Store interface {
	Upsert(ctx context.Context, tx *model.PendingTransaction)
	ReadAll(ctx context.Context) []*model.PendingTransaction
	Get(ctx context.Context, walletTxID string) (*model.PendingTransaction, bool)
	Pending(ctx context.Context, limit int) []*model.PendingTransaction
	MarkConfirmed(ctx context.Context, walletTxID, explorerTxID string)
	MarkFailed(ctx context.Context, walletTxID, errMsg string)
	CountPending(ctx context.Context) int
	TrackingMode(ctx context.Context) model.TrackingMode
	SetTrackingMode(ctx context.Context, mode model.TrackingMode)
	Events() *broker.EventBroker
}

// TransactionStore keeps the authoritative snapshot in memory, newest first,
// and writes it through to Redis as a single JSON document after every
// mutation. With a nil client it is a plain in-memory store.
type TransactionStore struct {
	mu      sync.RWMutex
	records []*model.PendingTransaction
	mode    model.TrackingMode

	client redis.UniversalClient
	events *broker.EventBroker
}

// NewStore builds a store backed by the given Redis client and loads any
// previously persisted snapshot. Load failures are logged and leave the
// store empty rather than failing construction.
func NewStore(client redis.UniversalClient, defaultMode model.TrackingMode) *TransactionStore {
	s := &TransactionStore{
		mode:   defaultMode,
		client: client,
		events: broker.NewEventBroker(),
	}
	if s.mode == "" {
		s.mode = model.ModePrivacy
	}
	s.load(context.Background())
	return s
}

// NewInMemory builds a store with no durability layer, for tests and
// unconfigured runs.
func NewInMemory(defaultMode model.TrackingMode) *TransactionStore {
	return NewStore(nil, defaultMode)
}

func (s *TransactionStore) load(ctx context.Context) {
	if s.client == nil {
		return
	}

	raw, err := s.client.Get(ctx, PendingTxKey).Result()
	switch {
	case err == redis.Nil:
	case err != nil:
		logrus.Warnf("store: could not load %s: %v", PendingTxKey, err)
	default:
		var records []*model.PendingTransaction
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			logrus.Warnf("store: corrupt snapshot under %s: %v", PendingTxKey, err)
		} else {
			s.records = records
		}
	}

	mode, err := s.client.Get(ctx, TrackingModeKey).Result()
	if err == nil {
		s.mode = model.ParseTrackingMode(mode)
	} else if err != redis.Nil {
		logrus.Warnf("store: could not load %s: %v", TrackingModeKey, err)
	}
}

// persistLocked marshals the snapshot while the caller holds the lock and
// writes it to Redis. Write failures are swallowed.
func (s *TransactionStore) persistLocked(ctx context.Context) {
	if s.client == nil {
		return
	}
	raw, err := json.Marshal(s.records)
	if err != nil {
		logrus.Warnf("store: marshal snapshot: %v", err)
		return
	}
	if err := s.client.Set(ctx, PendingTxKey, raw, 0).Err(); err != nil {
		logrus.Warnf("store: persist snapshot: %v", err)
	}
}

func (s *TransactionStore) indexLocked(walletTxID string) int {
	for i, r := range s.records {
		if r.WalletTxID == walletTxID {
			return i
		}
	}
	return -1
}

// evictLocked trims the record set to the cap, dropping the oldest terminal
// entries first. Pending entries are never dropped implicitly, even if that
// leaves the set over the cap.
func (s *TransactionStore) evictLocked() {
	for i := len(s.records) - 1; i >= 0 && len(s.records) > MaxTrackedTransactions; i-- {
		if s.records[i].Terminal() {
			s.records = append(s.records[:i], s.records[i+1:]...)
		}
	}
}

// Upsert inserts a new record at the front or merges an update into an
// existing one, keyed by WalletTxID. Merging preserves fields absent from
// the update, keeps a canonical ExplorerTxID once set, and never walks a
// terminal status backwards. UpdatedAt always advances.
func (s *TransactionStore) Upsert(ctx context.Context, tx *model.PendingTransaction) {
	if tx == nil || tx.WalletTxID == "" {
		return
	}

	s.mu.Lock()
	now := time.Now()
	if idx := s.indexLocked(tx.WalletTxID); idx >= 0 {
		merged := mergeTransaction(s.records[idx], tx)
		merged.UpdatedAt = now
		s.records[idx] = merged
	} else {
		record := *tx
		if record.Status == "" {
			record.Status = model.StatusPending
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		record.UpdatedAt = now
		s.records = append([]*model.PendingTransaction{&record}, s.records...)
		s.evictLocked()
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.events.Broadcast(broker.Event{Kind: broker.TransactionsChanged, Detail: tx.WalletTxID})
}

func mergeTransaction(existing, update *model.PendingTransaction) *model.PendingTransaction {
	merged := *existing

	if update.Kind != "" {
		merged.Kind = update.Kind
	}
	if update.Program != "" {
		merged.Program = update.Program
	}
	if update.FunctionName != "" {
		merged.FunctionName = update.FunctionName
	}
	if update.AssociatedEntityID != "" {
		merged.AssociatedEntityID = update.AssociatedEntityID
	}
	// ExplorerTxID sticks once it holds a canonical ledger ID. An interim
	// wallet handle adopted during polling may still be upgraded to the
	// canonical form.
	if update.ExplorerTxID != "" {
		if merged.ExplorerTxID == "" ||
			(!model.IsCanonicalTransactionID(merged.ExplorerTxID) && model.IsCanonicalTransactionID(update.ExplorerTxID)) {
			merged.ExplorerTxID = update.ExplorerTxID
		}
	}
	// Status only moves forward; terminal records keep their outcome.
	if !existing.Terminal() && update.Status != "" {
		merged.Status = update.Status
		if update.Status == model.StatusFailed {
			merged.Error = update.Error
		}
	}
	return &merged
}

// ReadAll returns copies of every record, newest first.
func (s *TransactionStore) ReadAll(_ context.Context) []*model.PendingTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.PendingTransaction, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	return out
}

// Get returns a copy of the record for walletTxID.
func (s *TransactionStore) Get(_ context.Context, walletTxID string) (*model.PendingTransaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexLocked(walletTxID); idx >= 0 {
		cp := *s.records[idx]
		return &cp, true
	}
	return nil, false
}

// Pending returns up to limit pending records, newest first. A non-positive
// limit returns them all.
func (s *TransactionStore) Pending(_ context.Context, limit int) []*model.PendingTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.PendingTransaction
	for _, r := range s.records {
		if r.Status != model.StatusPending {
			continue
		}
		cp := *r
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// MarkConfirmed transitions a pending record to confirmed and records the
// canonical ledger ID. Idempotent; a missing or already-failed record is
// left alone.
func (s *TransactionStore) MarkConfirmed(ctx context.Context, walletTxID, explorerTxID string) {
	s.mu.Lock()
	idx := s.indexLocked(walletTxID)
	if idx < 0 || s.records[idx].Status == model.StatusFailed {
		s.mu.Unlock()
		return
	}
	record := s.records[idx]
	record.Status = model.StatusConfirmed
	// The resolver hands over the canonical ID at confirmation, so it
	// replaces any interim wallet handle still sitting in the field.
	if explorerTxID != "" && (record.ExplorerTxID == "" || !model.IsCanonicalTransactionID(record.ExplorerTxID)) {
		record.ExplorerTxID = explorerTxID
	}
	record.Error = ""
	record.UpdatedAt = time.Now()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.events.Broadcast(broker.Event{Kind: broker.TransactionsChanged, Detail: walletTxID})
}

// MarkFailed transitions a pending record to failed with the given detail.
// A record already confirmed stays confirmed: a late failure signal after
// confirmation is a logic race to be ignored, not recorded.
func (s *TransactionStore) MarkFailed(ctx context.Context, walletTxID, errMsg string) {
	s.mu.Lock()
	idx := s.indexLocked(walletTxID)
	if idx < 0 || s.records[idx].Status == model.StatusConfirmed {
		s.mu.Unlock()
		return
	}
	record := s.records[idx]
	record.Status = model.StatusFailed
	record.Error = errMsg
	record.UpdatedAt = time.Now()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.events.Broadcast(broker.Event{Kind: broker.TransactionsChanged, Detail: walletTxID})
}

// CountPending returns the number of records still awaiting resolution.
func (s *TransactionStore) CountPending(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.records {
		if r.Status == model.StatusPending {
			count++
		}
	}
	return count
}

// TrackingMode returns the current mode policy flag.
func (s *TransactionStore) TrackingMode(_ context.Context) model.TrackingMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetTrackingMode persists the mode policy flag and broadcasts the change.
// In-flight resolver calls keep the mode they captured at invocation.
func (s *TransactionStore) SetTrackingMode(ctx context.Context, mode model.TrackingMode) {
	mode = model.ParseTrackingMode(string(mode))

	s.mu.Lock()
	s.mode = mode
	if s.client != nil {
		if err := s.client.Set(ctx, TrackingModeKey, string(mode), 0).Err(); err != nil {
			logrus.Warnf("store: persist tracking mode: %v", err)
		}
	}
	s.mu.Unlock()

	s.events.Broadcast(broker.Event{Kind: broker.ModeChanged, Detail: string(mode)})
}

// Events exposes the change-notification broker so UI surfaces can stay in
// sync without polling.
func (s *TransactionStore) Events() *broker.EventBroker {
	return s.events
}
