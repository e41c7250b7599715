// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ray-engine CLI. It scores
// assessment runs against an item bank, verifies stored signature pairs,
// predicts Eclipse trends from run history, and serves the same operations
// over HTTP.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/ray-engine/internal/logging"
	"github.com/pdiddy/ray-engine/internal/secrets"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the effective configuration, resolved before any command runs.
	cfg types.Config

	logger = zap.NewNop()

	// sealKey is the audit HMAC key from .secrets/, nil when absent.
	sealKey []byte
)

// rootCmd is the base command for the ray-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "ray-engine",
	Short: "Score, audit, and trend behavioral assessment runs",
	Long: `ray-engine turns a completed assessment run into per-Ray Shine, Eclipse
and Net Energy scores, a data-quality verdict, a Light Signature, and the
executive signal set. Every output is sealed with a signature pair so it can
be verified later, and a subject's stored runs feed a trend predictor that
raises early Eclipse warnings.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c

		l, err := logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		key, err := secrets.SealKey(secretsDir, cfg.Audit.SealKeyName, logger)
		if err != nil {
			return err
		}
		sealKey = key
		if key == nil {
			logger.Debug("no audit seal key, signature pairs are unsealed")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ray-engine.yaml or ~/.config/ray-engine/ray-engine.yaml)")
	pf.String("secrets-dir", secrets.DefaultDir, "directory holding secret files")
	pf.String("bank-dir", "", "item bank directory (default: built-in sample bank)")
	pf.String("db", "", "run store database file")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("bank.dir", pf.Lookup("bank-dir"))
	_ = viper.BindPFlag("store.path", pf.Lookup("db"))
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ray-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ray-engine"))
		}
	}

	viper.SetEnvPrefix("RAY_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Reading config file:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
