package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkamenskiy/greenboard/internal/logger"
	"github.com/mkamenskiy/greenboard/internal/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultInterval = "6h"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run ingestion passes on a schedule until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	interval := config.Interval
	if interval == "" {
		interval = defaultInterval
	}

	fetchers, err := buildFetchers(config, logger)
	if err != nil {
		logger.Fatal("building source fetchers", zap.Error(err))
	}

	pl, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	sink, cleanup, err := buildStore(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("building the store", zap.Error(err))
	}
	defer cleanup()

	pass := func() {
		result, err := pl.Collect(ctx, fetchers)
		if err != nil {
			if errors.Is(err, pipeline.ErrPassInProgress) {
				logger.Warn("skipping tick, previous pass still running")
				return
			}
			logger.Error("ingestion pass failed", zap.Error(err))
			return
		}

		if len(result.Postings) == 0 {
			logger.Info("pass finished with no postings")
			return
		}

		if _, err := pl.Commit(ctx, sink, result.Postings); err != nil {
			logger.Error("committing postings", zap.Error(err))
		}
	}

	logger.Info("starting scheduled ingestion", zap.String("interval", interval))

	// First pass immediately, then on the ticker.
	pass()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every "+interval, pass); err != nil {
		logger.Fatal("scheduling ingestion", zap.Error(err))
	}
	scheduler.Start()

	<-ctx.Done()
	logger.Info("shutting down")

	<-scheduler.Stop().Done()
}
