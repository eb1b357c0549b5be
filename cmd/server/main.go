package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"planar_router/pkg/api"
	"planar_router/pkg/config"
	"planar_router/pkg/logger"
	"planar_router/pkg/mapfile"
	"planar_router/pkg/routing"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (yaml, toml or json); PLANAR_* env vars override it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	log.Info("loading graph", zap.String("path", cfg.Graph.Path), zap.String("format", cfg.Graph.Format))
	g, err := mapfile.LoadGraph(cfg.Graph.Path, cfg.Graph.Format)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	engine := routing.NewEngine(g, log, routing.WithSnapRadius(cfg.Routing.SnapRadius))
	log.Info("ready", zap.Duration("elapsed", time.Since(start)))

	srvCfg := api.ServerConfig{
		Addr:           ":" + strconv.Itoa(cfg.Server.Port),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxConcurrent:  cfg.Server.MaxConcurrent,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	}

	handlers := api.NewHandlers(engine, log)
	srv := api.NewServer(ctx, srvCfg, handlers, log)

	return api.Run(ctx, srv, log)
}
