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
package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/geopredict/relay/model"
)

// RecordTransaction is the request body for recording an already-submitted
// wallet transaction so the reconciler can resolve it.
type RecordTransaction struct {
	WalletTxID         string `json:"wallet_tx_id"`
	ExplorerTxID       string `json:"explorer_tx_id,omitempty"`
	Kind               string `json:"kind,omitempty"`
	Program            string `json:"program,omitempty"`
	FunctionName       string `json:"function_name,omitempty"`
	AssociatedEntityID string `json:"associated_entity_id,omitempty"`
}

func (t *RecordTransaction) ValidateRecordTransaction() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.WalletTxID, validation.Required),
		validation.Field(&t.Kind, validation.In("stake", "claim", "other")),
	)
}

func (t *RecordTransaction) ToTransaction() *model.PendingTransaction {
	kind := model.TransactionKind(t.Kind)
	if kind == "" {
		kind = model.KindOther
	}
	return &model.PendingTransaction{
		WalletTxID:         t.WalletTxID,
		ExplorerTxID:       t.ExplorerTxID,
		Status:             model.StatusPending,
		Kind:               kind,
		Program:            t.Program,
		FunctionName:       t.FunctionName,
		AssociatedEntityID: t.AssociatedEntityID,
	}
}

// UpdateTrackingMode is the request body for switching the tracking mode.
type UpdateTrackingMode struct {
	Mode string `json:"mode"`
}

func (m *UpdateTrackingMode) ValidateUpdateTrackingMode() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Mode, validation.Required, validation.In("privacy", "reliability")),
	)
}
