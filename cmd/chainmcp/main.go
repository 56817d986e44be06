// Command chainmcp serves blockchain lookup tools, resources, and prompts to
// an MCP client, dispatching each operation to the configured network
// backends. Counters are published for Prometheus on a side listener.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jmourad/chainmcp/internal/backend"
	"github.com/jmourad/chainmcp/internal/backend/evm"
	"github.com/jmourad/chainmcp/internal/backend/flux"
	"github.com/jmourad/chainmcp/internal/backend/solana"
	"github.com/jmourad/chainmcp/internal/cache"
	"github.com/jmourad/chainmcp/internal/config"
	"github.com/jmourad/chainmcp/internal/metrics"
	"github.com/jmourad/chainmcp/internal/router"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	transport := flag.String("transport", "", "transport override (stdio, sse)")
	metricsAddr := flag.String("metrics-addr", "", "metrics listen address override")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	// Logs go to stderr: stdout belongs to the stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *transport != "" {
		cfg.Server.Transport = *transport
	}
	if *metricsAddr != "" {
		cfg.Metrics.ListenAddr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	var store cache.Store
	if cfg.Cache.Enabled {
		redisStore, err := cache.New(cfg.Cache.Config, logger)
		if err != nil {
			logger.Error("failed to connect response cache", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("response cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
	}

	registry := backend.NewRegistry()
	closers, err := buildBackends(ctx, cfg, registry, store, logger)
	if err != nil {
		// Startup-time misconfiguration (including a duplicate network) is
		// the only error class allowed to abort the process.
		logger.Error("failed to assemble backends", "error", err)
		os.Exit(1)
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	registry.Freeze()
	logger.Info("registry frozen", "networks", registry.Networks())

	sink := metrics.NewSink()
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", sink.Handler())
		go func() {
			logger.Info("serving metrics", "addr", cfg.Metrics.ListenAddr)
			if err := http.ListenAndServe(cfg.Metrics.ListenAddr, mux); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	rt := router.New(registry, sink, logger)
	s := rt.Server(cfg.Server.Name, cfg.Server.Version)

	switch cfg.Server.Transport {
	case config.TransportSSE:
		sse := mcpserver.NewSSEServer(s)
		go func() {
			<-ctx.Done()
			sse.Shutdown(context.Background())
		}()
		logger.Info("serving MCP over SSE", "addr", cfg.Server.ListenAddr)
		if err := sse.Start(cfg.Server.ListenAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("sse server exited with error", "error", err)
			os.Exit(1)
		}
	default:
		logger.Info("serving MCP over stdio")
		if err := mcpserver.ServeStdio(s); err != nil {
			logger.Error("stdio server exited with error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

// buildBackends constructs and registers one adapter per configured network,
// wrapping each with the response cache when enabled.
func buildBackends(ctx context.Context, cfg *config.Config, registry *backend.Registry, store cache.Store, logger *slog.Logger) ([]io.Closer, error) {
	var (
		adapters []backend.Adapter
		closers  []io.Closer
	)

	if bc := cfg.Backends.Flux; bc != nil {
		adapters = append(adapters, flux.New(flux.Config{
			BaseURL: bc.BaseURL,
			Timeout: cfg.RequestTimeout,
		}, logger))
	}

	if bc := cfg.Backends.Ethereum; bc != nil {
		a, err := evm.New(ctx, evm.Config{
			Network:     "ethereum",
			RPCURL:      bc.RPCURL,
			ExplorerURL: bc.ExplorerURL,
			Timeout:     cfg.RequestTimeout,
		}, logger)
		if err != nil {
			return closers, err
		}
		adapters = append(adapters, a)
		closers = append(closers, a)
	}

	if bc := cfg.Backends.Solana; bc != nil {
		a := solana.New(solana.Config{
			RPCURL:  bc.RPCURL,
			Timeout: cfg.RequestTimeout,
		}, logger)
		adapters = append(adapters, a)
		closers = append(closers, a)
	}

	for _, a := range adapters {
		if store != nil {
			a = backend.Cached(a, store, logger)
		}
		if err := registry.Register(a); err != nil {
			return closers, err
		}
		logger.Info("backend registered", "network", a.Network())
	}
	return closers, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
