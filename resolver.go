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
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/geopredict/relay/model"
	"github.com/geopredict/relay/wallet"
)

const (
	// DefaultMaxAttempts and DefaultInterval bound a foreground wait at
	// roughly three minutes.
	DefaultMaxAttempts = 90
	DefaultInterval    = 2 * time.Second
)

// errStillRelaying is the per-attempt signal that nothing resolved and
// nothing terminally failed, so the loop should sleep and try again.
var errStillRelaying = errors.New("on-chain transaction id still relaying")

// ResolveOptions parameterizes one resolution run.
type ResolveOptions struct {
	// WalletTxID is the wallet-local handle to translate. It may already be
	// a canonical ledger ID, in which case the fast path returns it without
	// any wallet round trip.
	WalletTxID string

	// Status is the wallet status polling channel.
	Status wallet.StatusProvider

	// History is the optional elevated-permission history channel. It is
	// consulted only when UseHistory is set and HistoryProgram is non-empty.
	History        wallet.HistoryProvider
	UseHistory     bool
	HistoryProgram string

	// MaxAttempts bounds the loop; a non-positive value means a single
	// probe. Interval is the sleep between attempts; zero means none.
	MaxAttempts int
	Interval    time.Duration

	// OnCandidate is invoked whenever a better candidate ID is learned, so
	// callers can surface it before final resolution.
	OnCandidate func(txID string)
}

// ResolveOnchainTransactionID translates a wallet-local transaction ID into
// the canonical ledger ID, racing three channels per attempt: the explorer
// fast path, the wallet status poll, and (policy permitting) the wallet
// history lookup. The explorer is ground truth, wallet-reported status is
// advisory only, so every newly learned candidate is re-checked against it.
//
// On success the canonical ID is returned. A wallet-declared failure or a
// non-transient channel error surfaces immediately as a terminal error.
// Exhausting the attempt budget yields *RelayPendingError, which is not a
// failure: the transaction may still land, and the reconciler retries later.
func (l *Relay) ResolveOnchainTransactionID(ctx context.Context, opts ResolveOptions) (string, error) {
	if opts.WalletTxID == "" {
		return "", errors.New("wallet transaction id is required")
	}
	if opts.Status == nil {
		return "", errors.New("status channel is required")
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	candidate := opts.WalletTxID
	adopt := func(id string) {
		candidate = id
		if opts.OnCandidate != nil {
			opts.OnCandidate(id)
		}
	}
	settled := func() bool {
		return model.IsCanonicalTransactionID(candidate) && l.probe.Exists(ctx, candidate)
	}

	operation := func() (string, error) {
		if settled() {
			return candidate, nil
		}

		status, err := opts.Status.TransactionStatus(ctx, opts.WalletTxID)
		if err == nil {
			if id := status.CandidateTransactionID(); id != "" && id != candidate {
				adopt(id)
			}
			switch {
			case status.Error != "":
				// A set error field is terminal unless it is
				// transient-shaped (the "unknown error occurred" class of
				// wallet noise).
				err = errors.New(status.Error)
			case status.Rejected():
				return "", backoff.Permanent(&TerminalRejectionError{
					WalletTxID: opts.WalletTxID,
					Status:     status.Normalized(),
				})
			default:
				if settled() {
					return candidate, nil
				}
			}
		}
		if err != nil && !wallet.IsTransient(err) {
			if status.Rejected() {
				return "", backoff.Permanent(&TerminalRejectionError{
					WalletTxID: opts.WalletTxID,
					Status:     status.Normalized(),
					Detail:     status.Error,
				})
			}
			return "", backoff.Permanent(err)
		}

		if opts.UseHistory && opts.HistoryProgram != "" && opts.History != nil {
			history, herr := opts.History.RequestTransactionHistory(ctx, opts.HistoryProgram)
			if herr != nil {
				// The history channel is best-effort: missing capability or
				// ungranted permission is swallowed, anything else is
				// terminal.
				if !wallet.IsIgnorableHistoryError(herr) {
					return "", backoff.Permanent(herr)
				}
			} else {
				for _, row := range history.Transactions {
					if row.ID != opts.WalletTxID && row.TransactionID != opts.WalletTxID {
						continue
					}
					if model.IsCanonicalTransactionID(row.TransactionID) {
						adopt(row.TransactionID)
						if l.probe.Exists(ctx, candidate) {
							return candidate, nil
						}
					}
					break
				}
			}
		}

		return "", errStillRelaying
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.Interval), uint64(attempts-1)),
		ctx,
	)
	id, err := backoff.RetryWithData(operation, policy)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, errStillRelaying) {
		// One last look before giving up: the transaction may have landed
		// during the final sleep.
		if settled() {
			return candidate, nil
		}
		return "", &RelayPendingError{WalletTxID: opts.WalletTxID}
	}
	return "", err
}
