package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/arencloud/sitedeploy/internal/api"
	"github.com/arencloud/sitedeploy/internal/config"
	"github.com/arencloud/sitedeploy/internal/db"
	"github.com/arencloud/sitedeploy/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)

	gdb, err := db.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init db", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           api.Router(cfg, logger, db.NewHistory(gdb)),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB headers
	}
	logger.Info("history server starting", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}
