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
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/geopredict/relay"
	"github.com/geopredict/relay/config"
	redis_db "github.com/geopredict/relay/internal/redis-db"
)

const sweepTask = "relay:sweep"

// processSweep runs one reconciliation sweep from the periodic task queue.
func (b *relayInstance) processSweep(reconciler *relay.Reconciler) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		reconciler.Sweep(ctx)
		return nil
	}
}

func initializeQueues() map[string]int {
	queues := make(map[string]int)
	queues[relay.WEBHOOK_QUEUE] = 3
	queues[sweepTask] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOption.Addr,
			Password: redisOption.Password,
			DB:       redisOption.DB,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

// initializeScheduler enqueues the periodic sweep task on the configured
// reconciler interval.
func initializeScheduler(conf *config.Configuration) (*asynq.Scheduler, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisOption.Addr,
			Password: redisOption.Password,
			DB:       redisOption.DB,
		},
		nil,
	)

	interval := time.Duration(conf.Reconciler.IntervalSec) * time.Second
	_, err = scheduler.Register(
		fmt.Sprintf("@every %s", interval),
		asynq.NewTask(sweepTask, nil, asynq.Queue(sweepTask)),
	)
	if err != nil {
		return nil, fmt.Errorf("error registering sweep task: %v", err)
	}
	return scheduler, nil
}

// workerCommands defines the "workers" command. Workers drain the webhook
// queue and run reconciliation sweeps off the scheduler, so a deployment can
// split resolution load from the HTTP server.
func workerCommands(b *relayInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start relay workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			reconciler := newReconciler(b)

			queues := initializeQueues()
			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			mux.HandleFunc(relay.WEBHOOK_QUEUE, relay.ProcessWebhook)
			if reconciler != nil {
				mux.Handle(sweepTask, b.processSweep(reconciler))

				scheduler, err := initializeScheduler(conf)
				if err != nil {
					log.Fatal(err)
				}
				if err := scheduler.Start(); err != nil {
					log.Fatalf("could not start scheduler: %v", err)
				}
				defer scheduler.Shutdown()
			}

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
