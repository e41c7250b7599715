// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// BankConfig locates the item bank.
type BankConfig struct {
	// Dir is the item bank directory (contains manifest.yaml). Empty means
	// the built-in sample bank.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// StoreConfig holds settings for the run store.
type StoreConfig struct {
	// Path is the SQLite database file (default "data/ray-engine.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// AuditConfig holds settings for signature generation.
type AuditConfig struct {
	// AlgorithmVersion is recorded on every signature pair (default "pipeline-v1").
	AlgorithmVersion string `json:"algorithm_version" yaml:"algorithm_version" mapstructure:"algorithm_version"`

	// SealKeyName is the secret file holding the HMAC seal key. When the
	// secret is absent signature pairs are produced unsealed.
	SealKeyName string `json:"seal_key_name" yaml:"seal_key_name" mapstructure:"seal_key_name"`
}

// ServerConfig holds settings for the HTTP adapter.
type ServerConfig struct {
	Addr         string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// RecorderQueue is the capacity of the asynchronous persistence queue.
	RecorderQueue int `json:"recorder_queue" yaml:"recorder_queue" mapstructure:"recorder_queue"`
}

// LoggingConfig selects the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Development switches to the human-readable console encoder.
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// BatchConfig holds settings for batch scoring.
type BatchConfig struct {
	// Workers bounds concurrent scoring (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// Config groups all settings of the ray-engine binary.
type Config struct {
	Bank    BankConfig    `json:"bank" yaml:"bank" mapstructure:"bank"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Audit   AuditConfig   `json:"audit" yaml:"audit" mapstructure:"audit"`
	Trend   TrendRules    `json:"trend" yaml:"trend" mapstructure:"trend"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Batch   BatchConfig   `json:"batch" yaml:"batch" mapstructure:"batch"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{Path: "data/ray-engine.db"},
		Audit: AuditConfig{AlgorithmVersion: "pipeline-v1", SealKeyName: "audit-seal-key"},
		Trend: DefaultTrendRules(),
		Server: ServerConfig{
			Addr:          ":8143",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  30 * time.Second,
			RecorderQueue: 64,
		},
		Logging: LoggingConfig{Level: "info"},
		Batch:   BatchConfig{Workers: 4},
	}
}
