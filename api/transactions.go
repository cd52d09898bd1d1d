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
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/geopredict/relay"
	model2 "github.com/geopredict/relay/api/model"
)

// RecordTransaction records an already-submitted wallet transaction as
// pending. The background reconciler resolves its on-chain id from there.
//
// Responses:
// - 400 Bad Request: If there's an error in binding JSON or validating the transaction.
// - 201 Created: If the transaction is successfully recorded.
func (a Api) RecordTransaction(c *gin.Context) {
	var newTransaction model2.RecordTransaction
	if err := c.ShouldBindJSON(&newTransaction); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := newTransaction.ValidateRecordTransaction()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	tx := newTransaction.ToTransaction()
	a.relay.Store().Upsert(c.Request.Context(), tx)

	resp, ok := a.relay.Store().Get(c.Request.Context(), tx.WalletTxID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction was not recorded"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetTransaction retrieves a tracked transaction by its wallet-local id.
func (a Api) GetTransaction(c *gin.Context) {
	id, passed := c.Params.Get("wallet_tx_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet_tx_id is required. pass id in the route /:wallet_tx_id"})
		return
	}

	resp, ok := a.relay.Store().Get(c.Request.Context(), id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAllTransactions lists every tracked transaction, newest first.
func (a Api) GetAllTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, a.relay.Store().ReadAll(c.Request.Context()))
}

// GetPendingCount returns the number of transactions still awaiting their
// on-chain id.
func (a Api) GetPendingCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pending": a.relay.Store().CountPending(c.Request.Context())})
}

// ReconcileTransaction runs one on-demand probe for a single tracked
// transaction.
//
// Responses:
// - 404 Not Found: If the wallet-local id is unknown.
// - 202 Accepted: If the transaction is still relaying.
// - 200 OK: If the transaction reached a terminal state.
func (a Api) ReconcileTransaction(c *gin.Context) {
	id, passed := c.Params.Get("wallet_tx_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet_tx_id is required. pass id in the route /:wallet_tx_id"})
		return
	}
	if a.reconciler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no wallet bridge configured"})
		return
	}

	resp, err := a.reconciler.Recheck(c.Request.Context(), id)
	if resp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var stillPending *relay.RelayPendingError
	if errors.As(err, &stillPending) {
		c.JSON(http.StatusAccepted, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SweepTransactions triggers a reconciliation sweep in the background. An
// already-running sweep makes this a no-op.
func (a Api) SweepTransactions(c *gin.Context) {
	if a.reconciler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no wallet bridge configured"})
		return
	}
	// The request context dies with the request, so the sweep gets its own.
	go a.reconciler.Sweep(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"message": "sweep started"})
}
