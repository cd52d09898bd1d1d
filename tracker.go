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
	"fmt"
	"time"

	"github.com/geopredict/relay/config"
	"github.com/geopredict/relay/internal/notification"
	"github.com/geopredict/relay/model"
	"github.com/geopredict/relay/wallet"
)

// SubmissionRequest describes a transaction to submit through the wallet
// and track until its on-chain id is known.
type SubmissionRequest struct {
	Program            string
	FunctionName       string
	Inputs             []string
	Fee                uint64
	PrivateFee         bool
	Kind               model.TransactionKind
	AssociatedEntityID string
}

// TrackSubmission submits the transaction through the wallet, records it as
// pending, then resolves its on-chain transaction id in the foreground.
//
// The returned record reflects the store after resolution. A nil error means
// the transaction was confirmed on chain. A *RelayPendingError means the
// attempt budget ran out while the transaction was still relaying; the record
// stays pending and the background reconciler keeps retrying it. Any other
// error means the wallet reported a terminal rejection and the record was
// marked failed.
func (l *Relay) TrackSubmission(ctx context.Context, submitter wallet.Submitter, status wallet.StatusProvider, history wallet.HistoryProvider, req SubmissionRequest) (*model.PendingTransaction, error) {
	if submitter == nil {
		return nil, errors.New("tracker: submitter is required")
	}

	walletTxID, err := submitter.ExecuteTransaction(ctx, wallet.ExecuteRequest{
		Program:      req.Program,
		FunctionName: req.FunctionName,
		Inputs:       req.Inputs,
		Fee:          req.Fee,
		PrivateFee:   req.PrivateFee,
	})
	if err != nil {
		return nil, fmt.Errorf("tracker: submitting %s/%s: %w", req.Program, req.FunctionName, err)
	}

	kind := req.Kind
	if kind == "" {
		kind = model.KindOther
	}
	l.store.Upsert(ctx, &model.PendingTransaction{
		WalletTxID:         walletTxID,
		Status:             model.StatusPending,
		Kind:               kind,
		Program:            req.Program,
		FunctionName:       req.FunctionName,
		AssociatedEntityID: req.AssociatedEntityID,
	})

	return l.resolveAndRecord(ctx, walletTxID, req.Program, status, history)
}

// Track records an already-submitted wallet transaction and resolves it in
// the foreground. Callers that drive the wallet themselves use this instead
// of TrackSubmission.
func (l *Relay) Track(ctx context.Context, tx *model.PendingTransaction, status wallet.StatusProvider, history wallet.HistoryProvider) (*model.PendingTransaction, error) {
	if tx == nil || tx.WalletTxID == "" {
		return nil, errors.New("tracker: wallet transaction id is required")
	}
	if tx.Status == "" {
		tx.Status = model.StatusPending
	}
	if tx.Kind == "" {
		tx.Kind = model.KindOther
	}
	l.store.Upsert(ctx, tx)
	return l.resolveAndRecord(ctx, tx.WalletTxID, tx.Program, status, history)
}

func (l *Relay) resolveAndRecord(ctx context.Context, walletTxID, program string, status wallet.StatusProvider, history wallet.HistoryProvider) (*model.PendingTransaction, error) {
	maxAttempts := DefaultMaxAttempts
	interval := DefaultInterval
	useHistory := l.store.TrackingMode(ctx) == model.ModeReliability && history != nil
	if conf, err := config.Fetch(); err == nil {
		if conf.Resolver.MaxAttempts > 0 {
			maxAttempts = conf.Resolver.MaxAttempts
		}
		if conf.Resolver.IntervalMs > 0 {
			interval = time.Duration(conf.Resolver.IntervalMs) * time.Millisecond
		}
		if program == "" {
			program = conf.Wallet.DefaultProgram
		}
	}

	id, err := l.ResolveOnchainTransactionID(ctx, ResolveOptions{
		WalletTxID:     walletTxID,
		Status:         status,
		History:        history,
		UseHistory:     useHistory,
		HistoryProgram: program,
		MaxAttempts:    maxAttempts,
		Interval:       interval,
		OnCandidate: func(candidate string) {
			l.store.Upsert(ctx, &model.PendingTransaction{
				WalletTxID:   walletTxID,
				ExplorerTxID: candidate,
			})
		},
	})
	if err == nil {
		l.store.MarkConfirmed(ctx, walletTxID, id)
		l.postTransactionActions(ctx, EventTransactionConfirmed, walletTxID)
	} else {
		var stillPending *RelayPendingError
		if errors.As(err, &stillPending) {
			// Left pending on purpose; the reconciler picks it up.
		} else {
			l.store.MarkFailed(ctx, walletTxID, err.Error())
			l.postTransactionActions(ctx, EventTransactionFailed, walletTxID)
		}
	}

	updated, ok := l.store.Get(ctx, walletTxID)
	if !ok {
		return nil, err
	}
	return updated, err
}

func (l *Relay) postTransactionActions(_ context.Context, event string, walletTxID string) {
	go func() {
		err := SendWebhook(NewWebhook{
			Event:   event,
			Payload: map[string]string{"wallet_tx_id": walletTxID},
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}
