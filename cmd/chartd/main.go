// Command chartd runs the chart generation service: session data tools,
// chart rendering, layout composition and the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/charts"
	"github.com/haasonsaas/chartd/internal/config"
	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/orchestrator"
	"github.com/haasonsaas/chartd/internal/render"
	"github.com/haasonsaas/chartd/internal/sheets"
	"github.com/haasonsaas/chartd/internal/store"
	"github.com/haasonsaas/chartd/internal/tools/dataframe"
	"github.com/haasonsaas/chartd/internal/tools/plotting"
	"github.com/haasonsaas/chartd/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML or JSON5)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "chartd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	st := store.New()

	renderer, err := render.New(cfg.Charts.Dir, log, metrics)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	manager, err := charts.New(cfg.Charts.Dir, cfg.Charts.TrashDir(), cfg.Charts.TrashRetention, log, metrics)
	if err != nil {
		return fmt.Errorf("create chart manager: %w", err)
	}

	registry := agent.NewRegistry()
	registry.MustRegister(dataframe.All(st, log)...)
	registry.MustRegister(plotting.All(st, renderer, log)...)

	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	provider := orchestrator.NewAnthropicProvider(apiKey, cfg.LLM.Model)
	runtime := orchestrator.NewRuntime(provider, registry, log, metrics, cfg.LLM.MaxTurns)

	handler := web.NewHandler(web.Config{
		Store:          st,
		Runtime:        runtime,
		Charts:         manager,
		Renderer:       renderer,
		Sheets:         sheets.NewClient(log),
		Logger:         log,
		Metrics:        metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go manager.RunPurgeLoop(ctx, cfg.Charts.PurgeInterval)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	log.Info(ctx, "chartd started", "addr", addr, "charts_dir", cfg.Charts.Dir, "model", cfg.LLM.Model)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}
	log.Info(context.Background(), "shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(context.Background(), "chartd stopped")
	return nil
}
