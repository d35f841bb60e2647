package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"framemark/internal/api"
	"framemark/internal/config"
	"framemark/internal/daemon"
	"framemark/internal/jobs"
	"framemark/internal/logging"
	"framemark/internal/pipeline"
	"framemark/internal/scheduler"
	"framemark/internal/server"
	"framemark/internal/stages/assembly"
	"framemark/internal/stages/extraction"
	"framemark/internal/stages/segmentation"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	registry := jobs.NewRegistry()
	executor, err := pipeline.NewExecutor(cfg, registry, logger, pipeline.StageSet{
		Extraction:   extraction.New(cfg, logger),
		Segmentation: segmentation.New(cfg, logger),
		Assembly:     assembly.New(cfg, logger),
	})
	if err != nil {
		log.Fatalf("create pipeline: %v", err)
	}

	sched, err := scheduler.New(cfg, registry, executor, logger)
	if err != nil {
		log.Fatalf("create scheduler: %v", err)
	}

	gateway, err := api.NewGateway(registry)
	if err != nil {
		log.Fatalf("create gateway: %v", err)
	}

	srv, err := server.New(cfg, gateway, sched, executor, logger)
	if err != nil {
		log.Fatalf("create api server: %v", err)
	}

	d, err := daemon.New(cfg, registry, sched, srv, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("framemarkd shutting down")
}
