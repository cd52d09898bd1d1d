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
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/geopredict/relay/model"
	"github.com/geopredict/relay/wallet"
)

const (
	// DefaultSweepInterval is the cadence of background sweeps.
	DefaultSweepInterval = 15 * time.Second
	// DefaultSweepBatch bounds the wallet calls made per sweep.
	DefaultSweepBatch = 4
)

// explicitFailurePattern picks out terminal errors that represent a wallet
// rejection rather than background noise; only those move a record to
// failed from the reconciler.
var explicitFailurePattern = regexp.MustCompile(`(?i)failed|rejected`)

// Reconciler periodically drains still-pending records through a single
// non-blocking resolver probe each, so reconciliation proceeds even when the
// original caller is gone (a reload, a closed tab). It should run only while
// a wallet connection is active: Start on connect, Stop on disconnect.
type Reconciler struct {
	relay    *Relay
	status   wallet.StatusProvider
	history  wallet.HistoryProvider
	program  string
	interval time.Duration
	batch    int

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

// NewReconciler builds a reconciler over the given wallet channels. program
// is the history program used for records that did not record their own.
func NewReconciler(relay *Relay, status wallet.StatusProvider, history wallet.HistoryProvider, program string, interval time.Duration, batch int) *Reconciler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	return &Reconciler{
		relay:    relay,
		status:   status,
		history:  history,
		program:  program,
		interval: interval,
		batch:    batch,
		stop:     make(chan struct{}),
	}
}

// Sweep runs one reconciliation pass. Sweeps are single-flight: if a
// previous sweep is still in flight the call returns immediately. Sweep
// never returns an error to its caller: the only meaningful outcomes are a
// confirmation or an explicit wallet rejection, and everything else is
// logged and retried on the next pass.
func (r *Reconciler) Sweep(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	defer r.running.Store(false)

	// The mode is captured once per sweep; a flip mid-sweep applies from
	// the next one.
	useHistory := r.relay.store.TrackingMode(ctx) == model.ModeReliability && r.history != nil

	for _, tx := range r.relay.store.Pending(ctx, r.batch) {
		err := r.reconcileRecord(ctx, tx, useHistory)
		var stillPending *RelayPendingError
		if err == nil || errors.As(err, &stillPending) {
			// Confirmed, or still relaying and retried next sweep.
			continue
		}
		logrus.Debugf("reconciler: sweep of %s: %v", tx.WalletTxID, err)
	}
}

// reconcileRecord runs a single non-blocking resolver probe for one record
// and applies the outcome to the store: confirmed on success, failed on an
// explicit wallet rejection, untouched otherwise. The resolver error is
// returned for the caller to report or log.
func (r *Reconciler) reconcileRecord(ctx context.Context, tx *model.PendingTransaction, useHistory bool) error {
	walletTxID := tx.WalletTxID
	program := tx.Program
	if program == "" {
		program = r.program
	}

	id, err := r.relay.ResolveOnchainTransactionID(ctx, ResolveOptions{
		WalletTxID:     walletTxID,
		Status:         r.status,
		History:        r.history,
		UseHistory:     useHistory,
		HistoryProgram: program,
		MaxAttempts:    1,
		Interval:       0,
		OnCandidate: func(candidate string) {
			r.relay.store.Upsert(ctx, &model.PendingTransaction{
				WalletTxID:   walletTxID,
				ExplorerTxID: candidate,
			})
		},
	})
	if err == nil {
		r.relay.store.MarkConfirmed(ctx, walletTxID, id)
		r.relay.postTransactionActions(ctx, EventTransactionConfirmed, walletTxID)
		return nil
	}

	var stillPending *RelayPendingError
	if !errors.As(err, &stillPending) && isExplicitFailure(err) {
		r.relay.store.MarkFailed(ctx, walletTxID, err.Error())
		r.relay.postTransactionActions(ctx, EventTransactionFailed, walletTxID)
	}
	return err
}

// Recheck is the manual re-check affordance: it runs one probe for a single
// record on demand. The returned record reflects the store after the probe;
// a *RelayPendingError means the transaction is still relaying.
func (r *Reconciler) Recheck(ctx context.Context, walletTxID string) (*model.PendingTransaction, error) {
	tx, ok := r.relay.store.Get(ctx, walletTxID)
	if !ok {
		return nil, errors.New("unknown wallet transaction id")
	}
	if tx.Terminal() {
		return tx, nil
	}

	useHistory := r.relay.store.TrackingMode(ctx) == model.ModeReliability && r.history != nil
	err := r.reconcileRecord(ctx, tx, useHistory)
	updated, _ := r.relay.store.Get(ctx, walletTxID)
	return updated, err
}

func isExplicitFailure(err error) bool {
	var rejection *TerminalRejectionError
	if errors.As(err, &rejection) {
		return true
	}
	return explicitFailurePattern.MatchString(err.Error())
}

// Start launches the periodic sweep loop. The first sweep runs immediately.
// The loop ends when Stop is called or ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		r.Sweep(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep(ctx)
			case <-r.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts sweep scheduling. Safe to call more than once.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}
