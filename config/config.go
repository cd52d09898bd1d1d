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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"

	// Whole-run defaults for the foreground resolver: 90 attempts every
	// 2s is roughly a three minute wait.
	DEFAULT_RESOLVER_MAX_ATTEMPTS = 90
	DEFAULT_RESOLVER_INTERVAL_MS  = 2000

	DEFAULT_RECONCILER_INTERVAL_SEC = 15
	DEFAULT_RECONCILER_BATCH_SIZE   = 4
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"RELAY_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"RELAY_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"RELAY_SERVER_PORT"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"RELAY_REDIS_DNS"`
}

type ExplorerConfig struct {
	Api        string `json:"api" envconfig:"RELAY_EXPLORER_API"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"RELAY_EXPLORER_TIMEOUT_SEC"`
}

type WalletConfig struct {
	// Api is the wallet bridge base URL. Leaving it empty disables the
	// background reconciler; foreground tracking still works through
	// caller-supplied channels.
	Api            string `json:"api" envconfig:"RELAY_WALLET_API"`
	DefaultProgram string `json:"default_program" envconfig:"RELAY_WALLET_DEFAULT_PROGRAM"`
}

type ResolverConfig struct {
	MaxAttempts int `json:"max_attempts" envconfig:"RELAY_RESOLVER_MAX_ATTEMPTS"`
	IntervalMs  int `json:"interval_ms" envconfig:"RELAY_RESOLVER_INTERVAL_MS"`
}

type ReconcilerConfig struct {
	IntervalSec int `json:"interval_sec" envconfig:"RELAY_RECONCILER_INTERVAL_SEC"`
	BatchSize   int `json:"batch_size" envconfig:"RELAY_RECONCILER_BATCH_SIZE"`
}

type TrackingConfig struct {
	DefaultMode string `json:"default_mode" envconfig:"RELAY_TRACKING_DEFAULT_MODE"`
}

// RateLimitConfig governs the API rate limiter. Nil values disable it.
type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"RELAY_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"RELAY_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"RELAY_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"RELAY_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	Redis        RedisConfig      `json:"redis"`
	Explorer     ExplorerConfig   `json:"explorer"`
	Wallet       WalletConfig     `json:"wallet"`
	Resolver     ResolverConfig   `json:"resolver"`
	Reconciler   ReconcilerConfig `json:"reconciler"`
	Tracking     TrackingConfig   `json:"tracking"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	Notification Notification     `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("relay", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called relay.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Relay Server"
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.Explorer.Api == "" {
		log.Println("Error: Explorer API is empty. It's a required field.")
		return errors.New("explorer API is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Explorer.Api = strings.TrimRight(strings.TrimSpace(cnf.Explorer.Api), "/")

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Explorer.TimeoutSec <= 0 {
		cnf.Explorer.TimeoutSec = 10
	}

	if cnf.Resolver.MaxAttempts <= 0 {
		cnf.Resolver.MaxAttempts = DEFAULT_RESOLVER_MAX_ATTEMPTS
	}
	if cnf.Resolver.IntervalMs < 0 {
		cnf.Resolver.IntervalMs = 0
	} else if cnf.Resolver.IntervalMs == 0 {
		cnf.Resolver.IntervalMs = DEFAULT_RESOLVER_INTERVAL_MS
	}

	if cnf.Reconciler.IntervalSec <= 0 {
		cnf.Reconciler.IntervalSec = DEFAULT_RECONCILER_INTERVAL_SEC
	}
	if cnf.Reconciler.BatchSize <= 0 {
		cnf.Reconciler.BatchSize = DEFAULT_RECONCILER_BATCH_SIZE
	}

	if cnf.Tracking.DefaultMode == "" {
		cnf.Tracking.DefaultMode = "privacy"
	}

	// Rate limiting is disabled when both RPS and Burst are nil.
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
