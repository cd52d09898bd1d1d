package model

import (
	"encoding/json"
	"strings"
	"time"
)

// TransactionStatus is the lifecycle state of a tracked submission.
// Transitions are forward-only: pending may become confirmed or failed,
// and both of those are terminal.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusFailed    TransactionStatus = "failed"
)

// TransactionKind tags the semantic action behind a submission. It is
// informational only and never affects resolution.
type TransactionKind string

const (
	KindStake TransactionKind = "stake"
	KindClaim TransactionKind = "claim"
	KindOther TransactionKind = "other"
)

// TrackingMode controls whether the resolver may use the wallet history
// channel. Privacy mode avoids requesting elevated on-chain-history
// permission from the wallet.
type TrackingMode string

const (
	ModePrivacy     TrackingMode = "privacy"
	ModeReliability TrackingMode = "reliability"
)

// ParseTrackingMode returns the mode for a stored flag value, defaulting
// to privacy for anything unrecognised.
func ParseTrackingMode(value string) TrackingMode {
	if TrackingMode(strings.TrimSpace(value)) == ModeReliability {
		return ModeReliability
	}
	return ModePrivacy
}

// PendingTransaction is one record per submitted wallet action. WalletTxID
// is the wallet-local handle and primary key; ExplorerTxID is the canonical
// ledger identifier once it is known.
type PendingTransaction struct {
	WalletTxID         string            `json:"wallet_tx_id"`
	ExplorerTxID       string            `json:"explorer_tx_id,omitempty"`
	Status             TransactionStatus `json:"status"`
	Kind               TransactionKind   `json:"kind"`
	Program            string            `json:"program"`
	FunctionName       string            `json:"function_name"`
	AssociatedEntityID string            `json:"associated_entity_id,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Error              string            `json:"error,omitempty"`
}

func (transaction *PendingTransaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}

// Terminal reports whether the record has reached a final state.
func (transaction *PendingTransaction) Terminal() bool {
	return transaction.Status == StatusConfirmed || transaction.Status == StatusFailed
}

const canonicalIDPrefix = "at1"

// bech32 data charset used by ledger transaction IDs.
const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// IsCanonicalTransactionID reports whether id looks like a canonical ledger
// transaction identifier rather than a wallet-local handle. Canonical IDs
// carry the at1 bech32 prefix; wallet-local handles are opaque strings
// (UUIDs, tmp-... markers) that never do. The resolver uses this predicate
// to decide when a candidate is worth probing on the explorer.
func IsCanonicalTransactionID(id string) bool {
	if !strings.HasPrefix(id, canonicalIDPrefix) {
		return false
	}
	if len(id) == len(canonicalIDPrefix) {
		return false
	}
	for _, r := range id[len(canonicalIDPrefix):] {
		if !strings.ContainsRune(bech32Charset, r) {
			return false
		}
	}
	return true
}
