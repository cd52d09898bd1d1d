package wallet

import (
	"context"
	"strings"
)

// Status is the wallet adapter's view of a submitted transaction. Adapters
// disagree on which field carries the on-chain transaction ID, so all three
// spellings seen in the wild are kept and CandidateTransactionID picks the
// first one present.
type Status struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	TxID          string `json:"tx_id,omitempty"`
	ID            string `json:"id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Normalized returns the reported status trimmed and lower-cased for
// comparison.
func (s Status) Normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Status))
}

// CandidateTransactionID returns the first populated transaction ID field,
// or an empty string when the adapter supplied none.
func (s Status) CandidateTransactionID() string {
	if s.TransactionID != "" {
		return s.TransactionID
	}
	if s.TxID != "" {
		return s.TxID
	}
	return s.ID
}

// Rejected reports whether the wallet explicitly declared the transaction
// dead. Anything else (not-found, pending, finalized, vendor-specific noise)
// is not a rejection.
func (s Status) Rejected() bool {
	switch s.Normalized() {
	case "failed", "rejected":
		return true
	}
	return false
}

// HistoryEntry is one row of a wallet's on-chain history. ID is the
// wallet-local handle, TransactionID the canonical ledger ID when the wallet
// knows it.
type HistoryEntry struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
}

// History is the response of the elevated-permission history capability.
type History struct {
	Transactions []HistoryEntry `json:"transactions"`
}

// ExecuteRequest describes an action submitted through the wallet.
type ExecuteRequest struct {
	Program      string   `json:"program"`
	FunctionName string   `json:"function_name"`
	Inputs       []string `json:"inputs"`
	Fee          uint64   `json:"fee"`
	PrivateFee   bool     `json:"private_fee"`
}

// StatusProvider polls the wallet for the state of a previously submitted
// transaction, keyed by the wallet-local ID.
type StatusProvider interface {
	TransactionStatus(ctx context.Context, walletTxID string) (Status, error)
}

// HistoryProvider is the optional elevated-permission capability that lists
// a program's on-chain history. Wallets may not implement it, and users may
// not have granted it.
type HistoryProvider interface {
	RequestTransactionHistory(ctx context.Context, program string) (History, error)
}

// Submitter executes an action through the wallet and returns the
// wallet-local transaction ID handed back by the adapter.
type Submitter interface {
	ExecuteTransaction(ctx context.Context, req ExecuteRequest) (string, error)
}
