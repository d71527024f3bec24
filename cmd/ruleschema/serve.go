package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-ruleschema/pkg/cache"
	"github.com/goliatone/go-ruleschema/pkg/orchestrator"
	"github.com/goliatone/go-ruleschema/pkg/server"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the conversion HTTP server",
	Long: `Serves POST /convert, which takes a YAML or JSON manifest body and returns
the generated definitions. Results can be cached in redis.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis-addr", "", "Redis address for the result cache (disabled if empty)")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database")
	serveCmd.Flags().Duration("cache-ttl", time.Hour, "Cached result lifetime")
	serveCmd.Flags().Int64("max-body", server.DefaultMaxBodyBytes, "Maximum manifest size in bytes")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	redisPassword, _ := cmd.Flags().GetString("redis-password")
	redisDB, _ := cmd.Flags().GetInt("redis-db")
	ttl, _ := cmd.Flags().GetDuration("cache-ttl")
	maxBody, _ := cmd.Flags().GetInt64("max-body")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	options := []server.Option{
		server.WithLogger(logger),
		server.WithMetricsRegistry(registry),
		server.WithMaxBodyBytes(maxBody),
		server.WithOrchestrator(orchestrator.New(orchestrator.WithLogger(logger))),
	}
	if redisAddr != "" {
		store := cache.NewRedis(redisAddr, redisPassword, redisDB, cache.WithTTL(ttl))
		defer store.Close()
		if err := store.Ping(cmd.Context()); err != nil {
			return err
		}
		options = append(options, server.WithCache(store))
		logger.Info("result cache enabled", "redis", redisAddr, "ttl", ttl)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(options...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("serve: listen: %w", err)
	}
	logger.Info("server listening", "addr", listener.Addr().String())

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(listener)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("serve: close: %w", err)
			}
		}
		logger.Info("server stopped")
		return nil
	}
}
