// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ray-engine/internal/audit"
	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/internal/pipeline"
	"github.com/pdiddy/ray-engine/internal/store"
	"github.com/pdiddy/ray-engine/internal/trend"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// registerDefaults makes every config key known to viper so environment
// variables such as RAY_ENGINE_STORE_PATH resolve even without a file.
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	var sections map[string]any
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("decoding default config: %w", err)
	}
	for key, value := range sections {
		v.SetDefault(key, value)
	}
	return nil
}

// loadConfig resolves the configuration from defaults, the config file,
// the environment, and bound flags, in increasing precedence.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	if err := registerDefaults(v); err != nil {
		return types.Config{}, err
	}
	c := types.DefaultConfig()
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if c.Batch.Workers < 1 {
		c.Batch.Workers = 1
	}
	return c, nil
}

// bankSource returns the configured item bank. An empty bank directory
// selects the built-in sample bank.
func bankSource(c types.Config) pipeline.BankFunc {
	if c.Bank.Dir == "" {
		return pipeline.Static(itembank.MustSample())
	}
	cache := itembank.NewCache()
	dir := c.Bank.Dir
	return func() (*itembank.Bank, error) { return cache.Get(dir) }
}

func newSigner(c types.Config) audit.Signer {
	return audit.Signer{Version: c.Audit.AlgorithmVersion, Key: sealKey}
}

func newPipeline(c types.Config) *pipeline.Pipeline {
	return pipeline.New(bankSource(c),
		pipeline.WithLogger(logger),
		pipeline.WithSigner(newSigner(c)),
	)
}

// newPredictor builds the trend predictor with the bank's intervention
// table, or the built-in table when the bank cannot be loaded.
func newPredictor(c types.Config) *trend.Predictor {
	interventions := itembank.DefaultInterventions()
	if bank, err := bankSource(c)(); err == nil && len(bank.Interventions()) > 0 {
		interventions = bank.Interventions()
	}
	return trend.New(c.Trend, interventions)
}

func openStore(c types.Config) (*store.Store, error) {
	s, err := store.Open(c.Store)
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}
	return s, nil
}
