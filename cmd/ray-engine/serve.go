// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/ray-engine/internal/pipeline"
	"github.com/pdiddy/ray-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scoring, verification, and prediction over HTTP",
	Long: `Serve starts the HTTP adapter. Scored runs are recorded in the run store
in the background; a storage failure is logged and never fails a request.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	rec := pipeline.NewRecorder(s, logger, cfg.Server.RecorderQueue)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rec.Close(ctx); err != nil {
			logger.Error("draining recorder", zap.Error(err))
		}
	}()

	srv := server.New(server.Deps{
		Pipeline:  newPipeline(cfg),
		Recorder:  rec,
		History:   s,
		Predictor: newPredictor(cfg),
		Log:       logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Server)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
