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

import "fmt"

// RelayPendingError signals that the wallet accepted the action but the
// canonical ledger ID did not resolve within the attempt budget. This is not
// a failure: the transaction may still land, so callers keep the record
// pending and retry later (manually or through the reconciler). Treating it
// as failed could cause a double submission.
type RelayPendingError struct {
	WalletTxID string
}

func (e *RelayPendingError) Error() string {
	return fmt.Sprintf("wallet returned temporary tx id (%s) but on-chain tx id is still pending", e.WalletTxID)
}

// TerminalRejectionError signals that the wallet explicitly reported the
// transaction as failed or rejected. Status carries the wallet's terminal
// state, Detail any wallet-supplied message.
type TerminalRejectionError struct {
	WalletTxID string
	Status     string
	Detail     string
}

func (e *TerminalRejectionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("transaction %s: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("transaction %s", e.Status)
}
