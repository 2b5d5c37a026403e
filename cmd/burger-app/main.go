// Burger builder application server.
//
// Serves the single-page burger builder the E2E scenarios drive, with an
// optional fixture-backed API so the application can be tried by hand.
//
// Usage:
//
//	go run ./cmd/burger-app -addr :4000
//	go run ./cmd/burger-app -addr :4000 -backend=false  # API only via route mocks
//	go run ./cmd/burger-app -fixtures ./testdata/fixtures
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thesyncim/burger-e2e/cmd/burger-app/server"
	"github.com/thesyncim/burger-e2e/internal/logging"
	"github.com/thesyncim/burger-e2e/pkg/fixture"
)

func main() {
	addr := flag.String("addr", ":4000", "Listen address")
	apiBase := flag.String("api-base", "/api", "API base the application calls (path or absolute URL)")
	backend := flag.Bool("backend", true, "Serve the API from fixtures")
	fixturesDir := flag.String("fixtures", "", "Directory overriding the embedded fixtures")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger, closeLog, err := logging.New(os.Stdout, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "burger-app: %v\n", err)
		os.Exit(2)
	}
	defer closeLog()

	cfg := server.DefaultConfig()
	cfg.Addr = *addr
	cfg.APIBase = *apiBase
	cfg.Logger = logger
	if *backend {
		cfg.Fixtures = fixture.Embedded()
		if *fixturesDir != "" {
			cfg.Fixtures = fixture.Dir(*fixturesDir)
		}
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	if _, err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Burger builder ready on %s\n", srv.URL())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
