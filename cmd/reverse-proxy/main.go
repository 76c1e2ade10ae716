// Command reverse-proxy runs a configurable HTTP reverse proxy: it accepts
// client requests on a single listening endpoint, maps them to upstream
// origin servers per a declarative routing configuration, and exposes
// operational metrics in a minimal Prometheus-compatible text format.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samims/reverse-proxy/internal/config"
	"github.com/samims/reverse-proxy/internal/logger"
	"github.com/samims/reverse-proxy/internal/proxy"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <config-file>\n", os.Args[0])
		return 1
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	l := logger.New("reverse-proxy")
	l.Info("starting reverse proxy", logger.FieldRoute(cfg.ListenAddress))

	p := proxy.New(cfg, l)

	server := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: p.Handler(),
	}

	listenErrors := make(chan error, 1)
	go func() {
		listenErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-listenErrors:
		if err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "failed to bind listener: %v\n", err)
			l.LogError(context.Background(), err, "failed to bind listener")
			return 2
		}
		return 0

	case sig := <-shutdown:
		l.Info("shutdown signal received", logger.FieldPath(sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			l.LogError(ctx, err, "graceful shutdown failed")
			server.Close()
		}
		return 0
	}
}
