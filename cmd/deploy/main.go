package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arencloud/sitedeploy/internal/build"
	"github.com/arencloud/sitedeploy/internal/config"
	"github.com/arencloud/sitedeploy/internal/db"
	"github.com/arencloud/sitedeploy/internal/deploy"
	"github.com/arencloud/sitedeploy/internal/logging"
	"github.com/arencloud/sitedeploy/internal/s3"
	"github.com/arencloud/sitedeploy/internal/version"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)
	logger.Info("deploy starting", "version", version.Version, "bucket", cfg.BucketName, "region", cfg.Region)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := s3.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to init s3 client", "error", err)
	}
	d := deploy.New(deploy.TargetFromConfig(cfg), store, build.NewRunner(cfg.NpmBin, cfg.ProjectDir, logger), logger)
	if cfg.HistoryEnabled {
		// history is best effort; a broken database must not block a deploy
		if gdb, err := db.Open(cfg, logger); err != nil {
			logger.Error("deployment history disabled", "error", err)
		} else {
			d.WithRecorder(db.NewHistory(gdb))
		}
	}

	res, err := d.Run(ctx)
	if err != nil {
		fmt.Printf("Deployment failed: %v\n", err)
		stop()
		os.Exit(1)
	}
	fmt.Println("\nWebsite deployed successfully!")
	fmt.Printf("Your website is available at: %s\n", res.URL)
}
