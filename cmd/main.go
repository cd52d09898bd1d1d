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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/geopredict/relay"
	"github.com/geopredict/relay/config"
	"github.com/geopredict/relay/internal/notification"
)

// cli encapsulates the root Cobra command.
type cli struct {
	cmd *cobra.Command
}

// relayInstance holds the relay service and its configuration for the
// lifetime of a command.
type relayInstance struct {
	relay *relay.Relay
	cnf   *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the relay service before
// any command runs.
func preRun(app *relayInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("relay.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newRelay, err := relay.NewRelay()
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.relay = newRelay
		app.cnf = cnf

		return nil
	}
}

// NewCLI creates the command-line interface for the relay service.
func NewCLI() *cli {
	var configFile string
	r := &relayInstance{}

	var rootCmd = &cobra.Command{
		Use:   "relay",
		Short: "Wallet to ledger transaction id relay",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./relay.json", "Configuration file for the relay")

	rootCmd.PersistentPreRunE = preRun(r)

	rootCmd.AddCommand(serverCommands(r))
	rootCmd.AddCommand(workerCommands(r))
	rootCmd.AddCommand(configCommands())

	return &cli{cmd: rootCmd}
}

func (w cli) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	c := NewCLI()
	c.executeCLI()
}
