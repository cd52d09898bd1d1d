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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopredict/relay/config"
	"github.com/geopredict/relay/model"
	"github.com/geopredict/relay/wallet"
)

func fastTrackerConfig() {
	config.MockConfig(&config.Configuration{
		ProjectName: "relay-test",
		Resolver:    config.ResolverConfig{MaxAttempts: 5, IntervalMs: 1},
	})
}

func TestTrackSubmissionConfirms(t *testing.T) {
	ctx := context.Background()
	exp := newFakeExplorer(t)
	relay := newTestRelay(t, exp)
	fastTrackerConfig()

	submitter := &fakeSubmitter{walletTxID: "tmp-abc"}
	status := &scriptedStatus{replies: []statusReply{
		{status: wallet.Status{Status: "pending"}},
		{status: wallet.Status{Status: "finalized", TransactionID: canonicalID}},
	}}
	// The ledger indexes the transaction while the wallet still reports
	// pending, as happens in practice.
	exp.add(canonicalID)

	tx, err := relay.TrackSubmission(ctx, submitter, status, nil, SubmissionRequest{
		Program:            "geopredict_market.aleo",
		FunctionName:       "place_stake",
		Inputs:             []string{"10u64"},
		Kind:               model.KindStake,
		AssociatedEntityID: "market-42",
	})
	require.NoError(t, err)
	assert.Equal(t, "tmp-abc", tx.WalletTxID)
	assert.Equal(t, canonicalID, tx.ExplorerTxID)
	assert.Equal(t, model.StatusConfirmed, tx.Status)
	assert.Equal(t, model.KindStake, tx.Kind)
	assert.Equal(t, "market-42", tx.AssociatedEntityID)
	assert.Equal(t, "geopredict_market.aleo", submitter.lastReq.Program)
	assert.Equal(t, "place_stake", submitter.lastReq.FunctionName)
}

func TestTrackSubmissionUpgradesInterimHandle(t *testing.T) {
	ctx := context.Background()
	exp := newFakeExplorer(t)
	relay := newTestRelay(t, exp)
	fastTrackerConfig()

	submitter := &fakeSubmitter{walletTxID: "tmp-abc"}
	// The wallet reports an interim handle of its own before the canonical
	// ledger ID exists. The handle is persisted as a candidate but must not
	// survive confirmation.
	status := &scriptedStatus{replies: []statusReply{
		{status: wallet.Status{Status: "pending", TransactionID: "relay-handle-2"}},
		{status: wallet.Status{Status: "finalized", TransactionID: canonicalID}},
	}}
	exp.add(canonicalID)

	tx, err := relay.TrackSubmission(ctx, submitter, status, nil, SubmissionRequest{
		Program:      "geopredict_market.aleo",
		FunctionName: "place_stake",
		Kind:         model.KindStake,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, tx.Status)
	assert.Equal(t, canonicalID, tx.ExplorerTxID)
}

func TestTrackSubmissionWalletRejection(t *testing.T) {
	ctx := context.Background()
	exp := newFakeExplorer(t)
	relay := newTestRelay(t, exp)
	fastTrackerConfig()

	submitter := &fakeSubmitter{walletTxID: "tmp-abc"}
	status := &scriptedStatus{replies: []statusReply{
		{status: wallet.Status{Status: "rejected"}},
	}}

	tx, err := relay.TrackSubmission(ctx, submitter, status, nil, SubmissionRequest{
		Program:      "geopredict_market.aleo",
		FunctionName: "place_stake",
	})
	var terminal *TerminalRejectionError
	require.ErrorAs(t, err, &terminal)
	require.NotNil(t, tx)
	assert.Equal(t, model.StatusFailed, tx.Status)
	assert.NotEmpty(t, tx.Error)
}

func TestTrackSubmissionExhaustionLeavesPending(t *testing.T) {
	ctx := context.Background()
	exp := newFakeExplorer(t)
	relay := newTestRelay(t, exp)
	fastTrackerConfig()

	submitter := &fakeSubmitter{walletTxID: "tmp-abc"}
	status := &scriptedStatus{}

	tx, err := relay.TrackSubmission(ctx, submitter, status, nil, SubmissionRequest{
		Program:      "geopredict_market.aleo",
		FunctionName: "place_stake",
	})
	var pending *RelayPendingError
	require.ErrorAs(t, err, &pending)
	require.NotNil(t, tx)
	assert.Equal(t, model.StatusPending, tx.Status)
	assert.Equal(t, 5, status.callCount(), "the configured budget bounds the polls")
	assert.Equal(t, 1, relay.Store().CountPending(ctx))
}

func TestTrackSubmissionSubmitFailure(t *testing.T) {
	ctx := context.Background()
	exp := newFakeExplorer(t)
	relay := newTestRelay(t, exp)
	fastTrackerConfig()

	submitter := &fakeSubmitter{err: errors.New("user declined in wallet")}

	_, err := relay.TrackSubmission(ctx, submitter, &scriptedStatus{}, nil, SubmissionRequest{
		Program:      "geopredict_market.aleo",
		FunctionName: "place_stake",
	})
	require.Error(t, err)
	assert.Equal(t, 0, relay.Store().CountPending(ctx), "nothing is recorded when submission fails")
}

func TestTrackRecordsExistingSubmission(t *testing.T) {
	ctx := context.Background()
	exp := newFakeExplorer(t, canonicalID)
	relay := newTestRelay(t, exp)
	fastTrackerConfig()

	status := &scriptedStatus{replies: []statusReply{
		{status: wallet.Status{Status: "finalized", TxID: canonicalID}},
	}}

	tx, err := relay.Track(ctx, &model.PendingTransaction{
		WalletTxID: "tmp-claim-1",
		Kind:       model.KindClaim,
		Program:    "geopredict_market.aleo",
	}, status, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, tx.Status)
	assert.Equal(t, canonicalID, tx.ExplorerTxID)
	assert.Equal(t, model.KindClaim, tx.Kind)
}

func TestTrackRequiresWalletTxID(t *testing.T) {
	exp := newFakeExplorer(t)
	relay := newTestRelay(t, exp)
	fastTrackerConfig()

	_, err := relay.Track(context.Background(), &model.PendingTransaction{}, &scriptedStatus{}, nil)
	assert.Error(t, err)

	_, err = relay.Track(context.Background(), nil, &scriptedStatus{}, nil)
	assert.Error(t, err)
}

func TestTrackHistoryFollowsStoredMode(t *testing.T) {
	ctx := context.Background()
	exp := newFakeExplorer(t, canonicalID)
	relay := newTestRelay(t, exp)
	fastTrackerConfig()

	history := &scriptedHistory{history: wallet.History{Transactions: []wallet.HistoryEntry{
		{ID: "tmp-abc", TransactionID: canonicalID},
	}}}

	// Privacy mode: the history channel is never consulted, so the resolver
	// exhausts its budget.
	_, err := relay.Track(ctx, &model.PendingTransaction{WalletTxID: "tmp-abc"}, &scriptedStatus{}, history)
	var pending *RelayPendingError
	require.ErrorAs(t, err, &pending)
	assert.Equal(t, 0, history.callCount())

	// Reliability mode: history resolves the id on the first attempt. The
	// program falls back to the configured default.
	config.MockConfig(&config.Configuration{
		ProjectName: "relay-test",
		Resolver:    config.ResolverConfig{MaxAttempts: 5, IntervalMs: 1},
		Wallet:      config.WalletConfig{DefaultProgram: "geopredict_market.aleo"},
	})
	relay.Store().SetTrackingMode(ctx, model.ModeReliability)
	tx, err := relay.Track(ctx, &model.PendingTransaction{WalletTxID: "tmp-abc"}, &scriptedStatus{}, history)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, tx.Status)
	assert.Equal(t, 1, history.callCount())
}
