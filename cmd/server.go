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

package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/geopredict/relay"
	"github.com/geopredict/relay/api"
	"github.com/geopredict/relay/config"
	"github.com/geopredict/relay/wallet"
)

// newReconciler wires the background reconciler from configuration. It
// returns nil when no wallet bridge is configured, in which case only the
// on-demand endpoints drive resolution against recorded candidates.
func newReconciler(b *relayInstance) *relay.Reconciler {
	interval := time.Duration(b.cnf.Reconciler.IntervalSec) * time.Second

	var status wallet.StatusProvider
	var history wallet.HistoryProvider
	if b.cnf.Wallet.Api != "" {
		adapter := wallet.NewHTTPAdapter(b.cnf.Wallet.Api)
		status = adapter
		history = adapter
	} else {
		log.Println("No wallet bridge configured, background reconciliation is disabled")
		return nil
	}

	return relay.NewReconciler(
		b.relay,
		status,
		history,
		b.cnf.Wallet.DefaultProgram,
		interval,
		b.cnf.Reconciler.BatchSize,
	)
}

func startServer(router *gin.Engine, cfg config.ServerConfig) error {
	log.Printf("Starting server on http://localhost:%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}

// serverCommands returns the Cobra command that starts the relay HTTP
// server and, when a wallet bridge is configured, the background
// reconciliation loop.
func serverCommands(b *relayInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start relay server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			reconciler := newReconciler(b)
			if reconciler != nil {
				reconciler.Start(ctx)
				defer reconciler.Stop()
			}

			router := api.NewAPI(b.relay, reconciler).Router()

			if err := startServer(router, b.cnf.Server); err != nil {
				log.Fatal(err)
			}
		},
	}

	return cmd
}
